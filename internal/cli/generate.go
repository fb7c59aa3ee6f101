package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"badgeforge/pkg/config"
	"badgeforge/pkg/pipeline"
	"badgeforge/pkg/roster"
)

// generateOpts holds the command-line flags for the generate command.
type generateOpts struct {
	entities     string // entities CSV path
	participants string // participants CSV path
	configPath   string // optional TOML config file
	outputDir    string // overrides [output].directory
	maxNameLen   int    // overrides [badge].max_name_length
	noCache      bool   // disable the QR raster cache
	mongoURI     string // read the roster from MongoDB instead of CSV
	mongoDB      string // MongoDB database name
}

// generateCommand creates the generate command, the main entry point:
// it renders the private-delegates PDF and the delegations PDF from the
// roster inputs.
//
// The roster comes from the two CSV files by default; with --mongo-uri
// it is read from MongoDB collections instead and the CSV flags are
// ignored.
func (c *CLI) generateCommand() *cobra.Command {
	opts := generateOpts{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the badge PDFs from a roster",
		Example: `  badgeforge generate -e entities.csv -p participants.csv
  badgeforge generate -e entities.csv -p participants.csv -o out --max-name-len 30
  badgeforge generate --mongo-uri mongodb://localhost:27017 --mongo-db event`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGenerate(cmd, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.entities, "entities", "e", "data/entities_upload.csv", "entities CSV file")
	cmd.Flags().StringVarP(&opts.participants, "participants", "p", "data/participants_upload.csv", "participants CSV file")
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "TOML config file")
	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "o", "", "directory for the generated PDFs")
	cmd.Flags().IntVar(&opts.maxNameLen, "max-name-len", 0, "badge label truncation bound")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the QR raster cache")
	cmd.Flags().StringVar(&opts.mongoURI, "mongo-uri", "", "read the roster from this MongoDB deployment")
	cmd.Flags().StringVar(&opts.mongoDB, "mongo-db", "", "MongoDB database containing the roster collections")

	return cmd
}

func (c *CLI) runGenerate(cmd *cobra.Command, opts *generateOpts) error {
	ctx := cmd.Context()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.outputDir != "" {
		cfg.Output.Directory = opts.outputDir
	}
	if opts.maxNameLen > 0 {
		cfg.Badge.MaxNameLength = opts.maxNameLen
	}
	if opts.mongoURI != "" {
		cfg.Mongo.URI = opts.mongoURI
	}
	if opts.mongoDB != "" {
		cfg.Mongo.Database = opts.mongoDB
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	source, closeSource, err := newSource(cmd, opts, cfg)
	if err != nil {
		return err
	}
	defer closeSource()

	runner, closeCache, err := c.newRunner(ctx, opts.noCache || !cfg.Cache.Enabled, cfg.Cache.RedisURL, cfg.Cache.Dir)
	if err != nil {
		return err
	}
	defer closeCache()

	spin := newSpinner(ctx, "rendering badge sheets...")
	spin.Start()

	prog := newProgress(c.Logger)
	result, err := runner.Execute(ctx, pipeline.Options{Source: source, Config: cfg})
	spin.Stop()
	if err != nil {
		printError("generation failed: %s", err)
		return err
	}
	prog.done(fmt.Sprintf("Run %s complete", result.RunID))

	for _, stream := range result.Streams {
		printStream(stream)
	}
	return nil
}

// newSource picks the roster source: MongoDB when a URI is configured,
// the CSV files otherwise. The returned func releases the source.
func newSource(cmd *cobra.Command, opts *generateOpts, cfg config.Config) (roster.Source, func(), error) {
	if cfg.Mongo.URI != "" {
		src, err := roster.NewMongoSource(cmd.Context(), roster.MongoConfig{
			URI:                    cfg.Mongo.URI,
			Database:               cfg.Mongo.Database,
			EntitiesCollection:     cfg.Mongo.EntitiesCollection,
			ParticipantsCollection: cfg.Mongo.ParticipantsCollection,
		})
		if err != nil {
			return nil, nil, err
		}
		return src, func() { _ = src.Close(cmd.Context()) }, nil
	}

	src := roster.CSVSource{
		EntitiesPath:     opts.entities,
		ParticipantsPath: opts.participants,
	}
	return src, func() {}, nil
}
