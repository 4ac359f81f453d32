package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"learning-exam-service/internal/app"
	"learning-exam-service/internal/domain"
	"learning-exam-service/internal/infra/memory"
)

type stubRenderer struct {
	mu    sync.Mutex
	names []string
	err   error
}

func (r *stubRenderer) Render(_ context.Context, learnerName, _, _ string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	r.names = append(r.names, learnerName)
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func newCertificateServer(t *testing.T, renderer *stubRenderer) (*httptest.Server, *memory.PointsLedger) {
	t.Helper()
	store := memory.NewCertificateStore()
	ctx := context.Background()
	issued := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for _, c := range []domain.Certificate{
		{ID: "c1", LearnerID: "u1", CourseID: "course-1", CourseName: "JavaScript Fundamentals", LearnerName: "Alice", IssuedAt: issued},
		{ID: "c2", LearnerID: "u1", CourseID: "course-2", CourseName: "React Development", LearnerName: "Alice", IssuedAt: issued.Add(time.Hour)},
		{ID: "c3", LearnerID: "u2", CourseID: "course-1", CourseName: "JavaScript Fundamentals", LearnerName: "Bob", IssuedAt: issued},
	} {
		if err := store.Create(ctx, c); err != nil {
			t.Fatalf("seed certificate: %v", err)
		}
	}
	ledger := memory.NewPointsLedger()
	if _, err := ledger.AddPoints(ctx, "u1", 18); err != nil {
		t.Fatalf("seed points: %v", err)
	}

	service := app.NewCertificateService(store, memory.NewRenderCache(time.Hour), renderer)
	mux := http.NewServeMux()
	NewCertificateHandler(service, ledger).Register(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, ledger
}

func TestListCertificates(t *testing.T) {
	server, _ := newCertificateServer(t, &stubRenderer{})

	resp, err := http.Get(server.URL + "/learners/u1/certificates")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var certs []domain.Certificate
	if err := json.NewDecoder(resp.Body).Decode(&certs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(certs) != 2 || certs[0].ID != "c1" || certs[1].ID != "c2" {
		t.Fatalf("expected u1 certificates in issue order, got %+v", certs)
	}
}

func TestLearnerPoints(t *testing.T) {
	server, _ := newCertificateServer(t, &stubRenderer{})

	resp, err := http.Get(server.URL + "/learners/u1/points")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var body pointsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.LearnerID != "u1" || body.Points != 18 {
		t.Fatalf("unexpected points: %+v", body)
	}
}

func TestGetCertificateNotFound(t *testing.T) {
	server, _ := newCertificateServer(t, &stubRenderer{})

	resp, err := http.Get(server.URL + "/certificates/nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestUpdateCertificateRerenders(t *testing.T) {
	renderer := &stubRenderer{}
	server, _ := newCertificateServer(t, renderer)

	// prime the cache with the old name
	resp, err := http.Get(server.URL + "/certificates/c1/image.png")
	if err != nil {
		t.Fatalf("get image: %v", err)
	}
	resp.Body.Close()

	req, _ := http.NewRequest(http.MethodPatch, server.URL+"/certificates/c1", strings.NewReader(`{"name":"Alice Liddell"}`))
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	defer resp.Body.Close()
	var cert domain.Certificate
	if err := json.NewDecoder(resp.Body).Decode(&cert); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cert.ID != "c1" || cert.LearnerName != "Alice Liddell" || cert.CourseName != "JavaScript Fundamentals" {
		t.Fatalf("unexpected updated certificate: %+v", cert)
	}

	renderer.mu.Lock()
	defer renderer.mu.Unlock()
	if len(renderer.names) != 2 || renderer.names[1] != "Alice Liddell" {
		t.Fatalf("expected re-render with new name, got %v", renderer.names)
	}
}

func TestUpdateCertificateRejectsBadBody(t *testing.T) {
	server, _ := newCertificateServer(t, &stubRenderer{})

	req, _ := http.NewRequest(http.MethodPatch, server.URL+"/certificates/c1", strings.NewReader(`{name`))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCertificateImageAndPDF(t *testing.T) {
	server, _ := newCertificateServer(t, &stubRenderer{})

	resp, err := http.Get(server.URL + "/certificates/c2/image.png")
	if err != nil {
		t.Fatalf("get image: %v", err)
	}
	data, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.Header.Get("Content-Type") != "image/png" {
		t.Fatalf("unexpected content type %q", resp.Header.Get("Content-Type"))
	}
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		t.Fatalf("expected png body: %v", err)
	}

	resp, err = http.Get(server.URL + "/certificates/c2/certificate.pdf")
	if err != nil {
		t.Fatalf("get pdf: %v", err)
	}
	data, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.Header.Get("Content-Type") != "application/pdf" || !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("expected pdf download, got %q %q", resp.Header.Get("Content-Type"), data[:min(len(data), 8)])
	}
}

func TestCertificateImageTemplateFailure(t *testing.T) {
	renderer := &stubRenderer{err: fmt.Errorf("%w: open assets/certificate.png: no such file", domain.ErrTemplateLoad)}
	server, _ := newCertificateServer(t, renderer)

	resp, err := http.Get(server.URL + "/certificates/c1/image.png")
	if err != nil {
		t.Fatalf("get image: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "certificate template") {
		t.Fatalf("expected template message, got %q", body)
	}
}
