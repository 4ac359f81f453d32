package certificate

import (
	"bytes"
	"fmt"
	"image/png"
	"io"

	"github.com/raykov/gofpdf"
)

// ExportPDF wraps a rendered certificate PNG into a single-page PDF whose page matches the
// image size (1px = 1pt).
func ExportPDF(pngData []byte, w io.Writer) error {
	cfg, err := png.DecodeConfig(bytes.NewReader(pngData))
	if err != nil {
		return fmt.Errorf("read certificate image: %w", err)
	}
	width, height := float64(cfg.Width), float64(cfg.Height)

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: width, Ht: height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("certificate", opts, bytes.NewReader(pngData))
	pdf.ImageOptions("certificate", 0, 0, width, height, false, opts, 0, "")
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("build pdf: %w", err)
	}
	return pdf.Output(w)
}
