package render

import (
	"context"

	"github.com/charmbracelet/log"

	"badgeforge/pkg/layout"
	"badgeforge/pkg/roster"
)

// DefaultMaxNameLength bounds the badge label before truncation.
const DefaultMaxNameLength = 25

// Footers and labels use the core Helvetica faces so no font files need
// embedding.
var (
	fontTitle      = Font{Family: "Helvetica", Style: "B", Size: 10}
	fontEntityID   = Font{Family: "Helvetica", Style: "B", Size: 10}
	fontEntityName = Font{Family: "Helvetica", Style: "", Size: 9}
	fontLabel      = Font{Family: "Helvetica", Style: "", Size: 7}
)

// placeholderEntity stands in for entities referenced by participants
// but absent from the entities input. Out-of-sync uploads are tolerated;
// the badges still print.
var placeholderEntity = roster.Entity{Type: "Unknown", DisplayName: "Unknown Delegation"}

// Option configures a Composer.
type Option func(*Composer)

// WithMaxNameLength overrides the label truncation bound.
func WithMaxNameLength(n int) Option {
	return func(c *Composer) { c.maxNameLen = n }
}

// WithLogger attaches a logger for per-stream diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(c *Composer) { c.logger = l }
}

// Composer owns one canvas for the duration of one output file and
// tracks pagination state: the current page's next free slot and the
// total page count. It is not safe for concurrent use; rendering is
// strictly sequential.
type Composer struct {
	canvas     Canvas
	geo        layout.Geometry
	enc        Encoder
	logger     *log.Logger
	maxNameLen int

	pages int
	slot  int // next free badge slot on the current page
}

// NewComposer creates a compositor drawing onto canvas with the given
// grid geometry and QR encoder.
func NewComposer(canvas Canvas, geo layout.Geometry, enc Encoder, opts ...Option) *Composer {
	c := &Composer{
		canvas:     canvas,
		geo:        geo,
		enc:        enc,
		logger:     log.Default(),
		maxNameLen: DefaultMaxNameLength,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Pages returns the number of pages opened so far.
func (c *Composer) Pages() int { return c.pages }

// Save commits the document to path. Every opened page is flushed,
// including the final one even if it holds fewer badges than a full
// grid.
func (c *Composer) Save(path string) error {
	return c.canvas.Save(path)
}

// Grouped lays all participants across all entities into one continuous
// sequence of pages. Every page footer shows the fixed title; entity
// identity is not rendered. A new page starts exactly when the running
// badge count reaches the grid capacity.
func (c *Composer) Grouped(ctx context.Context, parts *roster.ParticipantsByEntity, title string) error {
	footer := func() { c.drawTitleFooter(title) }
	c.startPage(footer)

	for _, entityID := range parts.EntityIDs() {
		for _, p := range parts.Of(entityID) {
			if err := c.place(ctx, p, footer); err != nil {
				return err
			}
		}
	}
	return nil
}

// PerEntity gives each entity its own run of pages: a fresh page per
// entity with the entity's ID and display name in the footer, redrawn on
// continuation pages, and a forced break afterwards so no page ever
// mixes two entities.
func (c *Composer) PerEntity(ctx context.Context, entities map[string]roster.Entity, parts *roster.ParticipantsByEntity) error {
	for _, entityID := range parts.EntityIDs() {
		entity, ok := entities[entityID]
		if !ok {
			c.logger.Warn("participants reference unknown entity", "entity", entityID)
			entity = placeholderEntity
		}

		footer := func() { c.drawEntityFooter(entityID, entity.DisplayName) }
		c.startPage(footer)

		for _, p := range parts.Of(entityID) {
			if err := c.place(ctx, p, footer); err != nil {
				return err
			}
		}
	}
	return nil
}

// startPage opens a fresh page, draws its footer, and resets the slot
// counter.
func (c *Composer) startPage(footer func()) {
	c.canvas.AddPage()
	c.pages++
	c.slot = 0
	footer()
}

// place renders one badge, breaking to a new page first when the current
// page is full.
//
// With a degenerate grid (badge larger than the usable area, zero badges
// per page) no slot exists at all: each participant consumes one empty
// page and nothing is drawn. The guard is explicit so the slot math
// never divides by a zero column count.
func (c *Composer) place(ctx context.Context, p roster.Participant, footer func()) error {
	if c.geo.BadgesPerPage == 0 {
		if c.slot > 0 {
			c.startPage(footer)
		}
		c.slot = 1 // page spoken for
		return nil
	}

	if c.slot >= c.geo.BadgesPerPage {
		c.startPage(footer)
	}

	if err := c.drawBadge(ctx, p, c.slot); err != nil {
		return err
	}
	c.slot++
	return nil
}

// drawBadge renders the QR code and name label for one participant into
// the given grid slot. An empty participant ID skips the QR code but
// still consumes the slot and prints the label.
func (c *Composer) drawBadge(ctx context.Context, p roster.Participant, slot int) error {
	x, y := c.geo.Cell(slot)
	cfg := c.geo.Config

	if p.ID != "" {
		png, err := c.enc.Encode(ctx, p.ID)
		if err != nil {
			return err
		}
		if err := c.canvas.DrawImage(png, x, y, cfg.QRSize, cfg.QRSize); err != nil {
			return err
		}
	}

	label := TruncateName(p.Name, c.maxNameLen)
	c.canvas.DrawCenteredText(x+cfg.QRSize/2, y+cfg.QRSize+cfg.LabelHeight/2, label, fontLabel)
	return nil
}

// drawTitleFooter centers the stream title near the bottom edge.
func (c *Composer) drawTitleFooter(title string) {
	cfg := c.geo.Config
	c.canvas.DrawCenteredText(cfg.PageWidth/2, cfg.PageHeight-cfg.Margin, title, fontTitle)
}

// drawEntityFooter centers the entity ID above its display name near the
// bottom edge. The display name may be empty; it is drawn as-is.
func (c *Composer) drawEntityFooter(entityID, displayName string) {
	cfg := c.geo.Config
	c.canvas.DrawCenteredText(cfg.PageWidth/2, cfg.PageHeight-cfg.Margin-5, entityID, fontEntityID)
	c.canvas.DrawCenteredText(cfg.PageWidth/2, cfg.PageHeight-cfg.Margin, displayName, fontEntityName)
}

// TruncateName bounds a badge label to max runes: names longer than max
// become the first max-3 runes followed by "...", names within the bound
// are returned unchanged.
func TruncateName(name string, max int) string {
	runes := []rune(name)
	if len(runes) <= max {
		return name
	}
	return string(runes[:max-3]) + "..."
}
