package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"plotter-bot/config"
	"plotter-bot/internal/infrastructure/logger"
)

type globalFlags struct {
	configPath string
	debug      bool
}

func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:          "plotter-bot",
		Short:        "Draws remote images on a two-axis servo pen plotter",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&flags.configPath, "config", os.Getenv("PLOTTER_CONFIG"), "path to YAML config")
	cmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "log every device command")

	cmd.AddCommand(
		runCmd(flags),
		drawCmd(flags),
		servoTestCmd(flags),
		portsCmd(),
	)
	return cmd
}

// setup читает конфигурацию и настраивает логгер на stderr команды.
func (f *globalFlags) setup(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	if _, err := logger.Setup(cmd.ErrOrStderr(), logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Debug:  f.debug,
	}); err != nil {
		return nil, err
	}
	return cfg, nil
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
