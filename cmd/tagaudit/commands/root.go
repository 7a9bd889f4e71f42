package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"tagaudit/internal/components/telemetry"
	"tagaudit/pkg/configutil"
	"tagaudit/pkg/serviceutil"

	"github.com/spf13/cobra"
)

var (
	configPath *string
	debug      *bool
	dumpHttp   *string
)

// loaded by the root command before any subcommand runs
var (
	config    Config
	providers telemetry.Telemetry
	tel       telemetry.API = telemetry.SlogAPI{}
)

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "tagaudit.json5", "The config file, searched for upwards from the cwd when given as a bare name.")
	debug = rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logs.")
	dumpHttp = rootCmd.PersistentFlags().String("dump-http", "", "Write every request/response pair to this directory.")
}

var rootCmd = &cobra.Command{
	Use:           "tagaudit",
	Short:         "tagaudit collects tagged posts and builds tag co-occurrence matrices.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(*debug)

		var err error
		config, err = configutil.Load[Config](*configPath)
		if err != nil {
			return fmt.Errorf("read config %s: %w", *configPath, err)
		}

		providers, err = telemetry.Setup(cmd.Context(), "tagaudit", config.Telemetry)
		if err != nil {
			return fmt.Errorf("setup telemetry: %w", err)
		}
		if providers.MeterProvider != nil {
			telemetry.InstrumentPerfStats(cmd.Context(), tel, 30*time.Second)
		}
		return nil
	},
}

// execute runs the command line and flushes the telemetry providers whether
// or not the command failed.
func execute(ctx context.Context, args []string) error {
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	shutdownErr := providers.Shutdown(shutdownCtx)
	providers = telemetry.Telemetry{}

	return errors.Join(err, shutdownErr)
}

func ExecuteContext(ctx context.Context) {
	err := execute(ctx, os.Args[1:])
	if err != nil {
		serviceutil.Fatal("tagaudit failed", err)
	}
}
