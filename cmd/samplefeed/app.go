package main

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gsarma/samplefeed/internal/config"
	"github.com/gsarma/samplefeed/internal/logging"
	"github.com/gsarma/samplefeed/internal/sample"
	"github.com/gsarma/samplefeed/internal/store"
	"github.com/gsarma/samplefeed/internal/supabase"
)

// sourceOpener builds the job source for cfg. The returned func releases it.
type sourceOpener func(ctx context.Context, cfg config.Config) (sample.JobSource, func(), error)

type app struct {
	cmd   *cobra.Command
	viper *viper.Viper

	out    io.Writer
	logOut io.Writer

	verbosity int
	cfg       config.Config
	logger    zerolog.Logger

	openSource sourceOpener
}

func newApp(out, logOut io.Writer) *app {
	a := &app{
		viper:      viper.New(),
		out:        out,
		logOut:     logOut,
		logger:     zerolog.Nop(),
		openSource: openSource,
	}

	a.cmd = &cobra.Command{
		Use:   config.Name,
		Short: "Read completed eDNA analysis samples",
		Long: `samplefeed reads the most recent completed analysis jobs from a Supabase project
and reshapes them into sample summaries, either once on the command line or
through a read-only HTTP API.`,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Parsing succeeded: errors from here on are runtime ones.
			a.cmd.SilenceUsage = true

			log.Logger = logging.New(a.logOut, config.LogConfig{}, a.verbosity)
			if err := config.Init(cmd, a.viper); err != nil {
				return err
			}
			cfg, err := config.Load(a.viper)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logging.New(a.logOut, cfg.Log, a.verbosity)
			log.Logger = a.logger
			return nil
		},
	}
	a.cmd.SetErr(logOut)
	a.cmd.CompletionOptions.HiddenDefaultCmd = true

	config.SetDefaults(a.viper)

	flags := a.cmd.PersistentFlags()
	flags.StringP("config", "c", "", "use a specific configuration file")
	flags.CountVarP(&a.verbosity, "verbose", "v", "issue DEBUG (-v), TRACE (-vv) output")
	flags.String("source", config.SourceREST, "job source: rest or postgres")
	if err := a.viper.BindPFlag("source", flags.Lookup("source")); err != nil {
		// Only fails when the flag does not exist.
		panic(fmt.Sprintf("failed to bind source flag: %v", err))
	}
	if err := a.cmd.MarkPersistentFlagFilename("config", "yaml", "yml", "json", "toml"); err != nil {
		panic(fmt.Sprintf("failed to mark config flag as filename: %v", err))
	}

	a.cmd.AddCommand(a.listCmd(), a.resultCmd(), a.serveCmd(), a.tokenCmd())
	return a
}

// run executes the command line args.
func (a *app) run(ctx context.Context, args []string) error {
	a.cmd.SetArgs(args)
	return a.cmd.ExecuteContext(ctx)
}

// usageError reports whether the last error came from parsing the command line.
func (a *app) usageError() bool {
	return !a.cmd.SilenceUsage
}

// fetcher opens the configured source and wraps it in a sample.Fetcher.
func (a *app) fetcher(ctx context.Context) (*sample.Fetcher, func(), error) {
	src, closeFn, err := a.openSource(ctx, a.cfg)
	if err != nil {
		return nil, nil, err
	}
	a.logger.Debug().Str("source", a.cfg.Source).Msg("Opened job source")
	return sample.NewFetcher(src, a.logger), closeFn, nil
}

func openSource(ctx context.Context, cfg config.Config) (sample.JobSource, func(), error) {
	switch cfg.Source {
	case config.SourcePostgres:
		pool, err := store.Connect(ctx, cfg.Database.URL)
		if err != nil {
			return nil, nil, err
		}
		return store.New(pool), pool.Close, nil
	default:
		c := supabase.New(cfg.Supabase.URL, cfg.Supabase.Key, supabase.WithTimeout(cfg.RequestTimeout))
		return supabase.NewJobsService(c), func() {}, nil
	}
}
