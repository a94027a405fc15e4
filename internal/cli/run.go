package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	app "plotter-bot/internal/application"
	"plotter-bot/internal/container"
	"plotter-bot/internal/domain/entity"
)

func runCmd(flags *globalFlags) *cobra.Command {
	var source string
	var dryRun bool

	c := &cobra.Command{
		Use:   "run",
		Short: "Receive jobs from the configured channel and draw them",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.setup(cmd)
			if err != nil {
				return err
			}
			if source != "" {
				cfg.Source = source
			}
			if dryRun {
				cfg.Device.DryRun = true
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			session, err := container.OpenDevice(ctx, cfg.Device, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer func() { _ = session.Close() }()

			deps, err := container.New(cfg, session, app.Hooks{
				OnTransition: func(from, to entity.JobState) {
					slog.Debug("state changed", "from", from, "to", to)
				},
			})
			if err != nil {
				return err
			}

			channel, err := deps.NewChannel(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = channel.Close() }()

			slog.InfoContext(ctx, "plotter is running", "source", cfg.Source)

			done := make(chan error, 1)
			go func() { done <- channel.Run(ctx, deps.Controller) }()

			var runErr error
			select {
			case <-deps.Controller.Fatal():
				stop()
				slog.Error("plotter halted after device failure", "error", deps.Controller.FatalErr())
				runErr = fmt.Errorf("device failure: %w", deps.Controller.FatalErr())
			case err := <-done:
				if err != nil {
					runErr = fmt.Errorf("job channel %s: %w", cfg.Source, err)
				}
			case <-ctx.Done():
				<-done
				slog.Info("shutting down")
			}

			// Канал мог вернуться раньше задания; порт закрывается только после поднятого пера.
			deps.Controller.Drain()
			return runErr
		},
	}

	c.Flags().StringVar(&source, "source", "", "job source: websocket, mqtt or telegram")
	c.Flags().BoolVar(&dryRun, "dry-run", false, "print commands instead of writing to the serial port")
	return c
}
