// Package pipeline runs the complete badge generation flow: load the
// roster, partition it by entity type, compute the grid geometry, and
// render one PDF per stream.
//
// Centralizing the flow keeps the CLI thin and gives tests a single
// entry point covering the same path users exercise.
//
//	runner := pipeline.NewRunner(cache, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Source: roster.CSVSource{EntitiesPath: "entities.csv", ParticipantsPath: "participants.csv"},
//	    Config: config.Default(),
//	})
package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"badgeforge/pkg/cache"
	"badgeforge/pkg/config"
	"badgeforge/pkg/errors"
	"badgeforge/pkg/layout"
	"badgeforge/pkg/render"
	"badgeforge/pkg/roster"
)

// Stream names and the fixed title printed on grouped pages.
const (
	StreamPrivateDelegates = "private delegates"
	StreamDelegations      = "delegations"

	privateDelegatesTitle = "Private Delegates"
)

// Options configures one generation run.
type Options struct {
	// Source provides the entity and participant records.
	Source roster.Source

	// Config holds page geometry, truncation, and output settings.
	Config config.Config
}

// Stream summarizes one output file of a run.
type Stream struct {
	Name         string // StreamPrivateDelegates or StreamDelegations
	Path         string // output file path
	Entities     int    // entities with participants in this stream
	Participants int    // badges rendered
	Pages        int    // pages in the document
	Skipped      bool   // true when the stream had no participants
}

// Result reports what a run produced.
type Result struct {
	RunID   string // unique per invocation, for log correlation
	Streams []Stream
}

// Runner executes generation runs. The cache is handed to the QR encoder
// so repeated runs over the same roster skip re-encoding.
type Runner struct {
	cache  cache.Cache
	logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables QR caching; a nil
// logger falls back to the default logger.
func NewRunner(c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{cache: c, logger: logger}
}

// Execute loads the roster, partitions it, and renders both streams.
// Loading both inputs completes before any rendering starts, so a fatal
// input error never leaves partial output behind.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := r.logger.With("run", runID)
	logger.Debug("loading roster")

	entities, err := opts.Source.Entities(ctx)
	if err != nil {
		return nil, err
	}
	parts, err := opts.Source.Participants(ctx)
	if err != nil {
		return nil, err
	}

	privateIDs, delegationIDs := roster.Classify(entities)
	logger.Info("roster loaded",
		"private_delegate_entities", len(privateIDs),
		"delegation_entities", len(delegationIDs),
		"participants", parts.Total())

	privateParts, delegationParts := roster.Partition(entities, parts)

	geo := layout.Compute(opts.Config.Layout())
	logger.Debug("grid geometry",
		"cols", geo.Cols, "rows", geo.Rows, "badges_per_page", geo.BadgesPerPage)

	encoder := render.NewCachedEncoder(render.QREncoder{}, r.cache)
	outDir := opts.Config.Output.Directory

	result := &Result{RunID: runID}

	private, err := r.renderStream(ctx, logger, streamJob{
		name:     StreamPrivateDelegates,
		path:     filepath.Join(outDir, opts.Config.Output.PrivateDelegates),
		geo:      geo,
		encoder:  encoder,
		maxName:  opts.Config.Badge.MaxNameLength,
		entities: entities,
		parts:    privateParts,
		grouped:  true,
	})
	if err != nil {
		return nil, err
	}
	result.Streams = append(result.Streams, private)

	delegations, err := r.renderStream(ctx, logger, streamJob{
		name:     StreamDelegations,
		path:     filepath.Join(outDir, opts.Config.Output.Delegations),
		geo:      geo,
		encoder:  encoder,
		maxName:  opts.Config.Badge.MaxNameLength,
		entities: entities,
		parts:    delegationParts,
		grouped:  false,
	})
	if err != nil {
		return nil, err
	}
	result.Streams = append(result.Streams, delegations)

	return result, nil
}

// streamJob carries everything needed to render one output file.
type streamJob struct {
	name     string
	path     string
	geo      layout.Geometry
	encoder  render.Encoder
	maxName  int
	entities map[string]roster.Entity
	parts    *roster.ParticipantsByEntity
	grouped  bool
}

// renderStream renders one stream to its PDF. A stream with no
// participants produces no file at all: an empty document would be
// malformed, so the stream is skipped and logged instead.
func (r *Runner) renderStream(ctx context.Context, logger *log.Logger, job streamJob) (Stream, error) {
	stream := Stream{
		Name:         job.name,
		Path:         job.path,
		Entities:     job.parts.Len(),
		Participants: job.parts.Total(),
	}

	if job.parts.Len() == 0 {
		logger.Info("no participants to process, skipping output", "stream", job.name, "path", job.path)
		stream.Skipped = true
		return stream, nil
	}

	if dir := filepath.Dir(job.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return stream, errors.Wrap(errors.ErrCodeIO, err, "create output directory %s", dir)
		}
	}

	canvas := render.NewPDFCanvas(job.geo.Config)
	comp := render.NewComposer(canvas, job.geo, job.encoder,
		render.WithMaxNameLength(job.maxName),
		render.WithLogger(logger),
	)

	var err error
	if job.grouped {
		err = comp.Grouped(ctx, job.parts, privateDelegatesTitle)
	} else {
		err = comp.PerEntity(ctx, job.entities, job.parts)
	}
	if err != nil {
		// Compositor errors already carry ENCODE_ERROR or RENDER_ERROR codes.
		return stream, err
	}

	if err := comp.Save(job.path); err != nil {
		return stream, err
	}

	stream.Pages = comp.Pages()
	logger.Info("stream rendered",
		"stream", job.name,
		"path", job.path,
		"entities", stream.Entities,
		"participants", stream.Participants,
		"pages", stream.Pages)
	return stream, nil
}
