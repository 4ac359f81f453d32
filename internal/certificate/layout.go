// Package certificate renders certificate images by compositing text and a circular
// profile photo onto a fixed-layout template.
package certificate

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// TextField places one centered line of text.
type TextField struct {
	Baseline int     // y of the text baseline
	Size     float64 // pixels
	Color    color.RGBA
}

// PhotoCircle is the region the profile photo is clipped into.
type PhotoCircle struct {
	CenterX int
	CenterY int
	Radius  int
}

// Layout holds the template coordinates; they are constants of the template artwork.
type Layout struct {
	Name       TextField
	Course     TextField
	Date       TextField
	Photo      PhotoCircle
	DateFormat string // Go time layout
}

// DefaultLayout matches the stock certificate template.
func DefaultLayout() Layout {
	return Layout{
		Name:       TextField{Baseline: 450, Size: 60, Color: color.RGBA{0x33, 0x33, 0x33, 0xff}},
		Course:     TextField{Baseline: 550, Size: 40, Color: color.RGBA{0x55, 0x55, 0x55, 0xff}},
		Date:       TextField{Baseline: 650, Size: 20, Color: color.RGBA{0x55, 0x55, 0x55, 0xff}},
		Photo:      PhotoCircle{CenterX: 150, CenterY: 150, Radius: 80},
		DateFormat: "January 2, 2006",
	}
}

// ParseHexColor parses "#333", "#555555" or "555555ff".
func ParseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
