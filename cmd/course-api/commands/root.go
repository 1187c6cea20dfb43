package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"course-api/cmd/course-api/globals"
	devenv "course-api/dev/env"
	"course-api/lib/configutil"
	"course-api/lib/restyutil"
	"course-api/lib/serviceutil"
	"course-api/lib/telemetry"
	"course-api/services/courseapi"

	"github.com/spf13/cobra"
)

var verbose *bool
var configPath *string

func init() {
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging/instrumentation.")
	configPath = rootCmd.PersistentFlags().String("config", "config.json5", "The configuration file to read.")
}

var rootCmd = &cobra.Command{
	Use:   "course-api",
	Short: "course-api scrapes CMU course data: schedules, catalog descriptions and course evaluations.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		tel := initTelemetry(ctx, *verbose)

		cfg, err := readConfig(ctx, *configPath)
		if err != nil {
			serviceutil.Fatal("read config", err)
		}

		var output restyutil.InstrumentOutput
		if *verbose {
			output = restyOutput()
		}

		service, closeService, err := courseapi.OpenService(cfg, output, telemetry.SlogAPI{})
		if err != nil {
			serviceutil.Fatal("open service", err)
		}

		cmd.SetContext(globals.Set(ctx, &globals.Value{
			Service:   service,
			Telemetry: tel,
			Close:     closeService,
		}))
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		value := globals.Get(cmd.Context())
		value.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := value.Telemetry.Shutdown(ctx)
		if err != nil {
			slog.Warn("failed to shutdown telemetry", "err", err)
		}
	},
}

// readConfig reads the config at path, falling back to the one in the dev
// environment and then to the defaults.
func readConfig(ctx context.Context, path string) (courseapi.Config, error) {
	cfg, err := configutil.ReadConfig[courseapi.Config](path)
	if !errors.Is(err, os.ErrNotExist) {
		return cfg, err
	}
	cfg, err = devenv.GetStateConfig[courseapi.Config]("config.json5")
	if err == nil {
		slog.DebugContext(ctx, "using dev environment config")
		return cfg, nil
	}
	slog.WarnContext(ctx, "config not found, using defaults", "path", path)
	return courseapi.DefaultConfig(), nil
}

func initTelemetry(ctx context.Context, verbose bool) telemetry.Telemetry {
	telemetry.InitSlog(verbose)
	if verbose {
		slog.DebugContext(ctx, "verbose logging enabled")
	}

	tel, err := telemetry.SetupFromEnv(ctx, "course-api")
	if errors.Is(err, os.ErrNotExist) {
		slog.DebugContext(ctx, "telemetry.json5 not found, skipping otel setup")
		return telemetry.Telemetry{}
	}
	if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}
	telemetry.InstrumentPerfStats(ctx, time.Minute)
	return tel
}

func restyOutput() restyutil.InstrumentOutput {
	output, err := restyutil.NewFilesystemOutput("<dev_state>/resty")
	if err != nil {
		slog.Warn("failed to create resty output", "err", err)
		return nil
	}
	return output
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
