package certificate

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	_ "golang.org/x/image/webp"
)

// maxImageBytes bounds remote downloads.
const maxImageBytes = 10 << 20

var (
	// ErrUnsafePath is returned for file references that are absolute or leave the root.
	ErrUnsafePath = errors.New("image path escapes the asset root")
	// ErrUnsupportedRef is returned when a reference's scheme has no source.
	ErrUnsupportedRef = errors.New("unsupported image reference")
	// ErrPrivateAddress is returned when a download would connect to a non-public address.
	ErrPrivateAddress = errors.New("image host resolves to a non-public address")
)

// ImageSource resolves an image reference into a decoded image.
type ImageSource interface {
	Load(ctx context.Context, ref string) (image.Image, error)
}

// FileSource reads images from disk. References must be relative and stay inside Root
// (the working directory when Root is empty).
type FileSource struct {
	Root string
}

func (s FileSource) Load(_ context.Context, ref string) (image.Image, error) {
	path, err := s.resolve(strings.TrimPrefix(ref, "file://"))
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

func (s FileSource) resolve(ref string) (string, error) {
	if ref == "" || filepath.IsAbs(ref) || filepath.VolumeName(ref) != "" {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, ref)
	}
	root := s.Root
	if root == "" {
		root = "."
	}
	path := filepath.Join(root, ref)
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, ref)
	}
	return path, nil
}

// SplitLocalRef turns an operator-supplied file path into a root and a reference that
// FileSource accepts. Empty, remote and data references are returned unchanged with an empty root.
func SplitLocalRef(ref string) (root, name string) {
	if ref == "" || isRemote(ref) || isData(ref) {
		return "", ref
	}
	path := strings.TrimPrefix(ref, "file://")
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return filepath.Dir(path), filepath.Base(path)
}

// PublicClient returns an HTTP client that refuses to connect to loopback, private,
// link-local, multicast or unspecified addresses, including after redirects.
func PublicClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout: timeout,
		Control: func(_, address string, _ syscall.RawConn) error {
			host, _, err := net.SplitHostPort(address)
			if err != nil {
				return err
			}
			addr, err := netip.ParseAddr(host)
			if err != nil {
				return err
			}
			if !publicAddr(addr) {
				return fmt.Errorf("%w: %s", ErrPrivateAddress, addr)
			}
			return nil
		},
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext
	return &http.Client{Timeout: timeout, Transport: transport}
}

func publicAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	return addr.IsGlobalUnicast() && !addr.IsPrivate() && !addr.IsLoopback() && !addr.IsLinkLocalUnicast()
}

// HTTPSource downloads images over http(s).
type HTTPSource struct {
	Client *http.Client
}

func (s HTTPSource) Load(ctx context.Context, ref string) (image.Image, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", ref, resp.StatusCode)
	}
	img, _, err := image.Decode(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", ref, err)
	}
	return img, nil
}

// DataURISource decodes base64 "data:image/...;base64," references, the form uploaded
// profile pictures are stored in.
type DataURISource struct{}

func (DataURISource) Load(_ context.Context, ref string) (image.Image, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("malformed data uri")
	}
	var raw []byte
	if strings.HasSuffix(header, ";base64") {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("data uri: %w", err)
		}
		raw = decoded
	} else {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("data uri: %w", err)
		}
		raw = []byte(unescaped)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode data uri: %w", err)
	}
	return img, nil
}

// Sources dispatches a reference to the matching source by scheme. A nil source
// rejects its scheme with ErrUnsupportedRef.
type Sources struct {
	File ImageSource
	HTTP ImageSource
	Data ImageSource
}

// DefaultSources reads files under root, fetches http(s) with client and decodes data URIs.
// It is meant for operator-supplied references such as the template.
func DefaultSources(root string, client *http.Client) *Sources {
	return &Sources{
		File: FileSource{Root: root},
		HTTP: HTTPSource{Client: client},
		Data: DataURISource{},
	}
}

// PhotoSources accepts only data URIs and http(s) downloads for learner-supplied photos.
// Pass a client from PublicClient so downloads cannot reach internal hosts.
func PhotoSources(client *http.Client) *Sources {
	return &Sources{
		HTTP: HTTPSource{Client: client},
		Data: DataURISource{},
	}
}

func (s *Sources) Load(ctx context.Context, ref string) (image.Image, error) {
	var src ImageSource
	switch {
	case isRemote(ref):
		src = s.HTTP
	case isData(ref):
		src = s.Data
	default:
		src = s.File
	}
	if src == nil {
		return nil, fmt.Errorf("%w: %.40q", ErrUnsupportedRef, ref)
	}
	return src.Load(ctx, ref)
}

func isRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

func isData(ref string) bool {
	return strings.HasPrefix(ref, "data:")
}
