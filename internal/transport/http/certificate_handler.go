package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"learning-exam-service/internal/app"
	"learning-exam-service/internal/certificate"
	"learning-exam-service/internal/domain"
)

// PointsReader exposes a learner's cumulative points.
type PointsReader interface {
	Points(ctx context.Context, learnerID string) (int, error)
}

// CertificateHandler serves certificate records, rendered images and learner points.
type CertificateHandler struct {
	certificates *app.CertificateService
	points       PointsReader
}

func NewCertificateHandler(certificates *app.CertificateService, points PointsReader) *CertificateHandler {
	return &CertificateHandler{certificates: certificates, points: points}
}

// Register mounts the certificate routes on mux.
func (h *CertificateHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /learners/{learnerId}/certificates", h.list)
	mux.HandleFunc("GET /learners/{learnerId}/points", h.learnerPoints)
	mux.HandleFunc("GET /certificates/{id}", h.get)
	mux.HandleFunc("PATCH /certificates/{id}", h.update)
	mux.HandleFunc("GET /certificates/{id}/image.png", h.image)
	mux.HandleFunc("GET /certificates/{id}/certificate.pdf", h.pdf)
}

type pointsResponse struct {
	LearnerID string `json:"learnerId"`
	Points    int    `json:"points"`
}

func (h *CertificateHandler) list(w http.ResponseWriter, r *http.Request) {
	certs, err := h.certificates.List(r.Context(), r.PathValue("learnerId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, certs)
}

func (h *CertificateHandler) learnerPoints(w http.ResponseWriter, r *http.Request) {
	learnerID := r.PathValue("learnerId")
	points, err := h.points.Points(r.Context(), learnerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pointsResponse{LearnerID: learnerID, Points: points})
}

func (h *CertificateHandler) get(w http.ResponseWriter, r *http.Request) {
	cert, err := h.certificates.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cert)
}

func (h *CertificateHandler) update(w http.ResponseWriter, r *http.Request) {
	var update domain.CertificateUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "invalid certificate update", http.StatusBadRequest)
		return
	}
	cert, _, err := h.certificates.Update(r.Context(), r.PathValue("id"), update)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cert)
}

func (h *CertificateHandler) image(w http.ResponseWriter, r *http.Request) {
	png, err := h.certificates.Image(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

func (h *CertificateHandler) pdf(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	png, err := h.certificates.Image(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := certificate.ExportPDF(png, &buf); err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="certificate-`+id+`.pdf"`)
	_, _ = w.Write(buf.Bytes())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrCertificateNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrTemplateLoad):
		http.Error(w, err.Error(), http.StatusBadGateway)
	default:
		log.Printf("certificate request failed: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
