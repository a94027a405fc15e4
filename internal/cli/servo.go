package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"plotter-bot/internal/container"
	"plotter-bot/internal/domain/entity"
	"plotter-bot/internal/infrastructure/device"
)

func servoTestCmd(flags *globalFlags) *cobra.Command {
	var manual bool
	var dryRun bool

	c := &cobra.Command{
		Use:   "servo-test",
		Short: "Sweep the servos or send raw directives by hand",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.setup(cmd)
			if err != nil {
				return err
			}
			if dryRun {
				cfg.Device.DryRun = true
			}
			cfg.Device.Diagnostic = true

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			session, err := container.OpenDevice(ctx, cfg.Device, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer func() { _ = session.Close() }()

			if !manual {
				if err := device.ServoTest(ctx, session, cfg.Workspace, nil); err != nil {
					return err
				}
				fmt.Fprintln(cmd.ErrOrStderr(), "servo test complete")
				return nil
			}

			fmt.Fprintln(cmd.ErrOrStderr(), "enter directives, empty line or \"quit\" to exit")
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if line == "" || strings.EqualFold(line, "quit") {
					break
				}
				if err := session.Send(ctx, entity.RawDirective(line)); err != nil {
					return err
				}
				if ctx.Err() != nil {
					break
				}
			}
			return scanner.Err()
		},
	}

	c.Flags().BoolVar(&manual, "manual", false, "read raw directives from stdin")
	c.Flags().BoolVar(&dryRun, "dry-run", false, "print commands instead of writing to the serial port")
	return c
}

func portsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List serial ports",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ports, err := device.ListPorts()
			if err != nil {
				return err
			}
			if len(ports) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), "no serial ports found")
				return nil
			}
			for _, p := range ports {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
}
