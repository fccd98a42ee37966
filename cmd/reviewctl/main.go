package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mediareviews/internal/apiclient"
	"mediareviews/internal/config"
	"mediareviews/internal/logger"
	"mediareviews/internal/pkg/jwt"
)

const tokenSubject = "reviewctl"

type app struct {
	client   *apiclient.Client
	authorID int64
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(nil).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, userMessage(err))
		stop()
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. A non-nil client skips environment
// loading, which tests use to point the CLI at an httptest server.
func newRootCmd(client *apiclient.Client) *cobra.Command {
	a := &app{client: client}

	root := &cobra.Command{
		Use:           "reviewctl",
		Short:         "Manage media reviews through the reviews API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if a.client != nil {
				return nil
			}
			cfg, err := config.LoadClient()
			if err != nil {
				return err
			}
			log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

			opts := []apiclient.Option{apiclient.WithLogger(log)}
			if cfg.ServiceTokenSecret != "" {
				tokens := jwt.New(cfg.ServiceTokenSecret, cfg.ServiceTokenTTL)
				opts = append(opts, apiclient.WithTokenSource(apiclient.NewServiceTokenSource(tokens, tokenSubject)))
			}
			a.client = apiclient.New(cfg.APIBaseURL, cfg.RequestTimeout, opts...)
			return nil
		},
	}
	root.PersistentFlags().Int64Var(&a.authorID, "author-id", 0, "telegram id sent as X-Author-Id for per-author rate limiting")

	root.AddCommand(
		a.healthCmd(),
		a.listCmd(),
		a.getCmd(),
		a.createCmd(),
		a.updateCmd(),
		a.deleteCmd(),
		a.uploadImageCmd(),
		a.downloadImageCmd(),
	)
	return root
}

func (a *app) ctx(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if a.authorID != 0 {
		ctx = apiclient.WithAuthor(ctx, a.authorID)
	}
	return ctx
}
