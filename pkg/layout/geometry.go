// Package layout computes badge grid geometry for fixed-size pages.
//
// All dimensions are millimeters. The geometry is a pure function of the
// page configuration: given the page size, margins, badge footprint, and
// the footer band reserved at the bottom of every sheet, it derives how
// many badge columns and rows fit and how leftover space is distributed
// between them. The rendering side converts cell positions to whatever
// coordinate system its canvas uses; this package always measures from
// the page's top-left corner.
package layout

import "math"

// Config describes the fixed page and badge dimensions in millimeters.
type Config struct {
	PageWidth    float64 // total page width
	PageHeight   float64 // total page height
	Margin       float64 // uniform margin on all four sides
	QRSize       float64 // QR code edge length (badges are QRSize wide)
	LabelHeight  float64 // label strip below the QR code
	FooterHeight float64 // band reserved for the per-page footer
}

// Default A4 portrait configuration: 210x297mm page, 10mm margins,
// 40mm QR with a 10mm label strip, 15mm footer band.
var DefaultConfig = Config{
	PageWidth:    210,
	PageHeight:   297,
	Margin:       10,
	QRSize:       40,
	LabelHeight:  10,
	FooterHeight: 15,
}

// BadgeWidth returns the horizontal footprint of one badge.
func (c Config) BadgeWidth() float64 { return c.QRSize }

// BadgeHeight returns the vertical footprint of one badge (QR plus label).
func (c Config) BadgeHeight() float64 { return c.QRSize + c.LabelHeight }

// Geometry holds the derived grid parameters for one page configuration.
type Geometry struct {
	Config Config

	Cols          int     // badge columns per page
	Rows          int     // badge rows per page
	BadgesPerPage int     // Cols * Rows; zero when a badge exceeds the usable area
	HSpacing      float64 // horizontal gap between and around badges
	VSpacing      float64 // vertical gap between and around badges
}

// Compute derives the grid geometry for cfg.
//
// Column and row counts floor the usable area so badges never overflow
// it. Spacing spreads the leftover space evenly between and around
// badges; with a single column (or row) the spacing collapses to zero,
// left-aligning the grid rather than centering it. That asymmetry is
// long-standing output behavior and is kept as is.
//
// When a badge is larger than the usable area, Cols or Rows is zero and
// BadgesPerPage is zero. Compute never divides by the column or row
// count, so the degenerate case is safe; callers must branch on
// BadgesPerPage before placing anything.
func Compute(cfg Config) Geometry {
	usableW := cfg.PageWidth - 2*cfg.Margin
	usableH := cfg.PageHeight - 2*cfg.Margin - cfg.FooterHeight

	cols := int(math.Floor(usableW / cfg.BadgeWidth()))
	rows := int(math.Floor(usableH / cfg.BadgeHeight()))
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}

	g := Geometry{
		Config:        cfg,
		Cols:          cols,
		Rows:          rows,
		BadgesPerPage: cols * rows,
	}
	if cols > 1 {
		g.HSpacing = (usableW - float64(cols)*cfg.BadgeWidth()) / float64(cols+1)
	}
	if rows > 1 {
		g.VSpacing = (usableH - float64(rows)*cfg.BadgeHeight()) / float64(rows+1)
	}
	return g
}

// Cell returns the top-left anchor of the badge in slot i on a page,
// measured in millimeters from the page's top-left corner. Slots fill
// left to right, then top to bottom: col = i mod Cols, row = i div Cols.
//
// The vertical offset includes the footer band, matching the printed
// sheets this layout was derived from.
//
// Cell requires BadgesPerPage > 0; callers handle the degenerate case.
func (g Geometry) Cell(i int) (x, y float64) {
	col := i % g.Cols
	row := i / g.Cols

	cfg := g.Config
	x = cfg.Margin + g.HSpacing + float64(col)*(cfg.BadgeWidth()+g.HSpacing)
	y = cfg.Margin + cfg.FooterHeight + g.VSpacing + float64(row)*(cfg.BadgeHeight()+g.VSpacing)
	return x, y
}
