package certificate

import (
	"fmt"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontFiles are optional TrueType/OpenType files for each text field. Empty paths fall back
// to the embedded Go fonts (bold, italic, regular).
type FontFiles struct {
	Name   string
	Course string
	Date   string
}

// Faces are the sized font faces used for one layout.
type Faces struct {
	Name   font.Face
	Course font.Face
	Date   font.Face
}

// LoadFaces parses the configured fonts at the layout's sizes.
func LoadFaces(files FontFiles, layout Layout) (Faces, error) {
	name, err := loadFace(files.Name, gobold.TTF, layout.Name.Size)
	if err != nil {
		return Faces{}, fmt.Errorf("name font: %w", err)
	}
	course, err := loadFace(files.Course, goitalic.TTF, layout.Course.Size)
	if err != nil {
		return Faces{}, fmt.Errorf("course font: %w", err)
	}
	date, err := loadFace(files.Date, goregular.TTF, layout.Date.Size)
	if err != nil {
		return Faces{}, fmt.Errorf("date font: %w", err)
	}
	return Faces{Name: name, Course: course, Date: date}, nil
}

func loadFace(path string, fallback []byte, size float64) (font.Face, error) {
	data := fallback
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		data = raw
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, err
	}
	// 72 DPI makes the point size equal to pixels.
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}
