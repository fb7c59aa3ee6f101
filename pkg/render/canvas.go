// Package render composes badge sheets onto a PDF canvas.
//
// The compositor walks participants in roster order and places one badge
// per grid slot: a QR code carrying the participant ID with the name
// printed beneath it. Page footers identify either the whole stream
// (grouped layout) or the entity owning the page (per-entity layout).
//
// Drawing goes through the [Canvas] interface so the pagination logic is
// testable without producing actual PDF bytes; [NewPDFCanvas] is the
// production implementation.
package render

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"badgeforge/pkg/errors"
	"badgeforge/pkg/layout"
)

// Font selects a core PDF font for text drawing. Size is in points.
type Font struct {
	Family string // "Helvetica"
	Style  string // "" or "B"
	Size   float64
}

// Canvas is the drawing surface badge sheets are composed onto.
// Coordinates are millimeters from the page's top-left corner.
type Canvas interface {
	// AddPage starts a new page. All drawing targets the current page.
	AddPage()

	// DrawImage places a PNG image with its top-left corner at (x, y).
	DrawImage(png []byte, x, y, w, h float64) error

	// DrawCenteredText draws text horizontally centered on x with its
	// baseline at y.
	DrawCenteredText(x, y float64, text string, font Font)

	// Save writes the document to path and releases the canvas. Every
	// page added so far is committed, including a trailing empty one.
	Save(path string) error
}

// pdfCanvas renders onto an in-memory gofpdf document.
type pdfCanvas struct {
	pdf    *gofpdf.Fpdf
	images int
}

// NewPDFCanvas creates a canvas for the given page size. gofpdf keeps
// the whole document in memory and writes it once on Save, so the file
// is either complete or absent, never truncated.
func NewPDFCanvas(cfg layout.Config) Canvas {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: cfg.PageWidth, Ht: cfg.PageHeight},
	})
	// Pagination is the compositor's job.
	pdf.SetAutoPageBreak(false, 0)
	return &pdfCanvas{pdf: pdf}
}

func (c *pdfCanvas) AddPage() {
	c.pdf.AddPage()
}

func (c *pdfCanvas) DrawImage(png []byte, x, y, w, h float64) error {
	// Image names must be unique per registration; a counter keeps
	// repeated payloads from colliding.
	c.images++
	name := fmt.Sprintf("qr-%d", c.images)

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	c.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
	c.pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")

	if c.pdf.Err() {
		return errors.Wrap(errors.ErrCodeRender, c.pdf.Error(), "draw image at (%.1f, %.1f)", x, y)
	}
	return nil
}

func (c *pdfCanvas) DrawCenteredText(x, y float64, text string, font Font) {
	c.pdf.SetFont(font.Family, font.Style, font.Size)
	w := c.pdf.GetStringWidth(text)
	c.pdf.Text(x-w/2, y, text)
}

func (c *pdfCanvas) Save(path string) error {
	if err := c.pdf.OutputFileAndClose(path); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", path)
	}
	return nil
}
