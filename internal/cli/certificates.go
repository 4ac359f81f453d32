package cli

import (
	"net/http"
	"path/filepath"
	"time"

	"learning-exam-service/internal/certificate"
	"learning-exam-service/internal/config"
)

// newCompositor builds the certificate compositor from the certificate config section.
// The template resolves under the asset root; learner photos may only be data URIs or
// public http(s) URLs.
func newCompositor(cfg config.Certificate) (*certificate.Compositor, error) {
	layout := certificate.DefaultLayout()
	layout.DateFormat = cfg.DateFormat

	faces, err := certificate.LoadFaces(certificate.FontFiles{
		Name:   cfg.Fonts.Name,
		Course: cfg.Fonts.Course,
		Date:   cfg.Fonts.Date,
	}, layout)
	if err != nil {
		return nil, err
	}

	photoTimeout := config.TTLDuration(cfg.PhotoTimeout, 5*time.Second)
	root, template := cfg.AssetRoot, cfg.Template
	if root == "" || filepath.IsAbs(template) {
		root, template = certificate.SplitLocalRef(template)
	}
	templates := certificate.DefaultSources(root, &http.Client{Timeout: photoTimeout})
	return certificate.NewCompositor(template, templates, layout, faces).
		WithPhotoSource(certificate.PhotoSources(certificate.PublicClient(photoTimeout))).
		WithPhotoTimeout(photoTimeout), nil
}
