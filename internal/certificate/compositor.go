package certificate

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log"
	"sync"
	"time"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/sync/errgroup"
	"learning-exam-service/internal/domain"
)

// Compositor renders certificates onto a template image.
type Compositor struct {
	template     string
	source       ImageSource
	photos       ImageSource
	layout       Layout
	faces        Faces
	photoTimeout time.Duration
	now          func() time.Time

	// font faces keep glyph caches and are not safe for concurrent drawing
	drawMu sync.Mutex
}

func NewCompositor(template string, source ImageSource, layout Layout, faces Faces) *Compositor {
	return &Compositor{
		template:     template,
		source:       source,
		layout:       layout,
		faces:        faces,
		photoTimeout: 5 * time.Second,
		now:          time.Now,
	}
}

// WithClock fixes the date printed on certificates (tests).
func (c *Compositor) WithClock(now func() time.Time) *Compositor {
	c.now = now
	return c
}

// WithPhotoSource loads profile photos from src instead of the template source. Photo
// references come from learners, so the server passes PhotoSources here.
func (c *Compositor) WithPhotoSource(src ImageSource) *Compositor {
	c.photos = src
	return c
}

// WithPhotoTimeout bounds how long a profile photo download may take.
func (c *Compositor) WithPhotoTimeout(d time.Duration) *Compositor {
	c.photoTimeout = d
	return c
}

// Render draws the learner name, course name, today's date and an optional circular photo
// onto the template and returns PNG bytes. A template that cannot be loaded fails the
// render with domain.ErrTemplateLoad; a photo that cannot be loaded is logged and skipped.
func (c *Compositor) Render(ctx context.Context, learnerName, courseName, photoRef string) ([]byte, error) {
	var background, photo image.Image

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		img, err := c.source.Load(gctx, c.template)
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrTemplateLoad, err)
		}
		background = img
		return nil
	})
	if photoRef != "" {
		g.Go(func() error {
			pctx := gctx
			if c.photoTimeout > 0 {
				var cancel context.CancelFunc
				pctx, cancel = context.WithTimeout(gctx, c.photoTimeout)
				defer cancel()
			}
			photos := c.photos
			if photos == nil {
				photos = c.source
			}
			img, err := photos.Load(pctx, photoRef)
			if err != nil {
				log.Printf("certificate: profile picture could not be loaded, rendering without it: %v", err)
				return nil
			}
			photo = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	bounds := background.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(canvas, canvas.Bounds(), background, bounds.Min, draw.Src)

	c.drawMu.Lock()
	c.drawCentered(canvas, c.faces.Name, c.layout.Name, learnerName)
	c.drawCentered(canvas, c.faces.Course, c.layout.Course, courseName)
	c.drawCentered(canvas, c.faces.Date, c.layout.Date, c.now().Format(c.layout.DateFormat))
	c.drawMu.Unlock()

	if photo != nil {
		drawCircularPhoto(canvas, photo, c.layout.Photo)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("encode certificate: %w", err)
	}
	return buf.Bytes(), nil
}

func (c *Compositor) drawCentered(dst draw.Image, face font.Face, field TextField, text string) {
	if text == "" {
		return
	}
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(field.Color),
		Face: face,
	}
	width := d.MeasureString(text)
	center := fixed.I(dst.Bounds().Dx() / 2)
	d.Dot = fixed.Point26_6{X: center - width/2, Y: fixed.I(field.Baseline)}
	d.DrawString(text)
}

func drawCircularPhoto(dst draw.Image, photo image.Image, circle PhotoCircle) {
	side := 2 * circle.Radius
	origin := image.Pt(circle.CenterX-circle.Radius, circle.CenterY-circle.Radius)

	scaled := image.NewRGBA(image.Rect(0, 0, side, side))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), photo, photo.Bounds(), xdraw.Src, nil)

	mask := &circleMask{center: image.Pt(circle.CenterX, circle.CenterY), radius: circle.Radius}
	target := image.Rectangle{Min: origin, Max: origin.Add(image.Pt(side, side))}
	draw.DrawMask(dst, target, scaled, image.Point{}, mask, origin, draw.Over)
}

// circleMask is opaque inside the circle and transparent outside.
type circleMask struct {
	center image.Point
	radius int
}

func (m *circleMask) ColorModel() color.Model { return color.AlphaModel }

func (m *circleMask) Bounds() image.Rectangle {
	return image.Rect(m.center.X-m.radius, m.center.Y-m.radius, m.center.X+m.radius, m.center.Y+m.radius)
}

func (m *circleMask) At(x, y int) color.Color {
	dx := float64(x-m.center.X) + 0.5
	dy := float64(y-m.center.Y) + 0.5
	r := float64(m.radius)
	if dx*dx+dy*dy < r*r {
		return color.Alpha{A: 0xff}
	}
	return color.Alpha{}
}
