package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/civitas-ai/civitas-ai/app/core"
	"github.com/civitas-ai/civitas-ai/pkg/safe"
)

type Options struct {
	ConfigPath string
}

func (o *Options) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVarP(&o.ConfigPath, "config", "c", "", "init api by given config")
}

func NewCommand() *cobra.Command {
	opts := &Options{}
	cmd := &cobra.Command{
		Use:   "service",
		Short: "data infrastructure service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(opts)
		},
	}
	opts.AddFlags(cmd.Flags())
	return cmd
}

func Run(opts *Options) error {
	app := core.MustSetupCore(core.MustLoadBaseConfig(opts.ConfigPath))
	startStateSweeper(app)
	serve(app)

	return nil
}

const stateSweepInterval = 10 * time.Minute

// startStateSweeper periodically evicts expired promoted states from
// the memory and document tiers. The cache tier expires natively.
func startStateSweeper(app *core.Core) {
	go func() {
		ticker := time.NewTicker(stateSweepInterval)
		defer ticker.Stop()
		for range ticker.C {
			safe.RunWithLog(func() {
				sweepExpiredStates(app)
			}, "service.startStateSweeper")
		}
	}()
}

func sweepExpiredStates(app *core.Core) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	removed, err := app.StateManager().CleanupExpiredStates(ctx)
	if err != nil {
		slog.Error("expired state sweep failed", slog.Any("error", err))
		return
	}
	if removed > 0 {
		slog.Info("expired states removed", slog.Int64("count", removed))
	}
}

// NewSweepCommand runs one cleanup pass and exits, for cron driven
// deployments that keep the service itself stateless.
func NewSweepCommand() *cobra.Command {
	opts := &Options{}
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "remove expired promoted states",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := core.MustSetupCore(core.MustLoadBaseConfig(opts.ConfigPath))
			sweepExpiredStates(app)
			return nil
		},
	}
	opts.AddFlags(cmd.Flags())
	return cmd
}
