package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/gsarma/samplefeed/internal/api"
	"github.com/gsarma/samplefeed/internal/auth"
	"github.com/gsarma/samplefeed/internal/metrics"
	"github.com/gsarma/samplefeed/internal/sample"
)

const shutdownTimeout = 10 * time.Second

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the most recent completed samples as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.requestContext(cmd.Context())
			defer cancel()

			f, closeFn, err := a.fetcher(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			samples, err := f.ListCompleted(ctx)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(a.out)
			enc.SetIndent("", "  ")
			return enc.Encode(samples)
		},
	}
}

func (a *app) resultCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "result <job-id>",
		Short: "Print the raw analysis result of one completed sample",
		Args:  cobra.MatchAll(cobra.ExactArgs(1), jobIDArg),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.requestContext(cmd.Context())
			defer cancel()

			f, closeFn, err := a.fetcher(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			result, err := f.Result(ctx, args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.out, string(result))
			return err
		},
	}
}

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve completed samples over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
	cmd.Flags().String("addr", ":8080", "address to listen on")
	if err := a.viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr")); err != nil {
		panic(fmt.Sprintf("failed to bind addr flag: %v", err))
	}
	return cmd
}

func (a *app) tokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Generate a random API token for server.token",
		Args:  cobra.NoArgs,
		// Needs no configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error {
			a.cmd.SilenceUsage = true
			return nil
		},
		RunE: func(*cobra.Command, []string) error {
			tok, err := auth.GenerateToken()
			if err != nil {
				return fmt.Errorf("failed to generate token: %w", err)
			}
			_, err = fmt.Fprintln(a.out, tok)
			return err
		},
	}
}

// serve runs the HTTP API until ctx is cancelled.
func (a *app) serve(ctx context.Context) error {
	f, closeFn, err := a.fetcher(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	metrics.MustRegister()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	guard := auth.NewGuard(a.cfg.Server.Token)
	api.RegisterRoutes(router, f, guard, a.logger)

	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info().Str("addr", srv.Addr).Bool("auth", guard.Enabled()).Msg("Serving sample API")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info().Msg("Shutting down sample API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// jobIDArg rejects job ids that are not safe to place in a backend query.
func jobIDArg(_ *cobra.Command, args []string) error {
	if !sample.ValidJobID(args[0]) {
		return fmt.Errorf("%w %q: use only letters, digits and . _ ~ -", sample.ErrInvalidJobID, args[0])
	}
	return nil
}

// requestContext bounds one-shot commands by request_timeout when it is set.
func (a *app) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.cfg.RequestTimeout > 0 {
		return context.WithTimeout(ctx, a.cfg.RequestTimeout)
	}
	return context.WithCancel(ctx)
}
