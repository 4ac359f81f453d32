package cli

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"learning-exam-service/internal/certificate"
	"learning-exam-service/internal/config"
)

type renderOptions struct {
	name   string
	course string
	photo  string
	out    string
}

// NewRenderCmd renders a single certificate to a PNG or PDF file without starting the server.
func NewRenderCmd(configPath *string) *cobra.Command {
	opts := renderOptions{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a certificate image to a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), *configPath, opts)
		},
	}
	cmd.Flags().StringVar(&opts.name, "name", "", "learner display name")
	cmd.Flags().StringVar(&opts.course, "course", "", "course name")
	cmd.Flags().StringVar(&opts.photo, "photo", "", "profile photo path, URL or data URI")
	cmd.Flags().StringVar(&opts.out, "out", "certificate.png", "output file (.png or .pdf)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("course")
	return cmd
}

func runRender(ctx context.Context, configPath string, opts renderOptions) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		cfg = config.Default()
	}

	compositor, err := newCompositor(cfg.Certificate)
	if err != nil {
		return err
	}
	// the operator may point at a local photo; the server never reads learner paths
	photoRoot, photo := certificate.SplitLocalRef(opts.photo)
	if photoRoot != "" {
		compositor.WithPhotoSource(certificate.FileSource{Root: photoRoot})
	}
	png, err := compositor.Render(ctx, opts.name, opts.course, photo)
	if err != nil {
		return err
	}

	data := png
	if strings.EqualFold(filepath.Ext(opts.out), ".pdf") {
		var buf bytes.Buffer
		if err := certificate.ExportPDF(png, &buf); err != nil {
			return err
		}
		data = buf.Bytes()
	}
	if err := os.WriteFile(opts.out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.out, err)
	}
	log.Printf("certificate written to %s", opts.out)
	return nil
}
