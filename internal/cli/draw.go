package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	app "plotter-bot/internal/application"
	"plotter-bot/internal/container"
	"plotter-bot/internal/domain/entity"
)

const localUser = "local"

func drawCmd(flags *globalFlags) *cobra.Command {
	var plan bool
	var dryRun bool

	c := &cobra.Command{
		Use:   "draw <path-or-url>",
		Short: "Draw a single image and exit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.setup(cmd)
			if err != nil {
				return err
			}
			if dryRun {
				cfg.Device.DryRun = true
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			out := cmd.OutOrStdout()

			if plan {
				deps, err := container.New(cfg, nil, app.Hooks{})
				if err != nil {
					return err
				}
				paths, err := deps.Controller.Plan(ctx, args[0])
				if err != nil {
					return err
				}
				for _, line := range deps.Emitter.Commands(cfg.Pipeline.Speed, paths) {
					fmt.Fprintln(out, line)
				}
				return nil
			}

			session, err := container.OpenDevice(ctx, cfg.Device, out)
			if err != nil {
				return err
			}
			defer func() { _ = session.Close() }()

			deps, err := container.New(cfg, session, app.Hooks{})
			if err != nil {
				return err
			}

			job, err := entity.NewJob(localUser, args[0])
			if err != nil {
				return err
			}
			report := deps.Controller.Submit(ctx, job, nil)
			if report.Err != nil {
				return report.Err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "drawn %d paths with %d commands\n", report.Paths, report.Commands)
			return nil
		},
	}

	c.Flags().BoolVar(&plan, "plan", false, "print the command stream without opening the device")
	c.Flags().BoolVar(&dryRun, "dry-run", false, "print commands instead of writing to the serial port")
	return c
}
