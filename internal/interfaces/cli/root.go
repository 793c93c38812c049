package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"uyadmin.io/cli/internal/application/services"
	"uyadmin.io/cli/internal/config"
	"uyadmin.io/cli/internal/core/domain"
	"uyadmin.io/cli/internal/infrastructure/api"
)

var (
	Version   = "dev"     // Overridden by ldflags
	BuildTime = "unknown" // Overridden by ldflags
)

// CLIContainer holds all the dependencies for CLI commands. Services are
// filled in by Build once flags and config are resolved.
type CLIContainer struct {
	Loader *config.Loader
	Config *config.Config
	Logger *logrus.Logger

	Auth       *api.AuthService
	Categories *api.CategoryService
	Properties *api.PropertyService
	Saved      *api.SavedPropertyService
	Dashboard  *services.DashboardService

	// Build wires the services for cfg. Set by the di container.
	Build func(cfg *config.Config) error
}

// flag name -> config key
var configFlags = map[string]string{
	"api-url":    "api_url",
	"log-level":  "log_level",
	"log-format": "log_format",
	"timeout":    "timeout",
}

// NewRootCommand builds the uyadmin command tree.
func NewRootCommand(container *CLIContainer) *cobra.Command {
	var (
		configPath string
		debugMode  bool
	)

	rootCmd := &cobra.Command{
		Use:   "uyadmin",
		Short: "Admin console for the property listing backend",
		Long: `uyadmin manages properties, categories and saved properties on the
listing backend. Log in once with 'uyadmin auth login'; expired access tokens
are refreshed automatically.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if debugMode {
				if err := cmd.Flags().Set("log-level", "debug"); err != nil {
					return err
				}
			}

			for flag, key := range configFlags {
				if err := container.Loader.BindFlag(key, cmd.Flags().Lookup(flag)); err != nil {
					return fmt.Errorf("failed to bind --%s: %w", flag, err)
				}
			}

			cfg, err := container.Loader.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			container.Config = cfg

			if container.Build == nil {
				return nil
			}
			return container.Build(cfg)
		},
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf("{{.Name}} version {{.Version}}\nBuild time: %s\nGo version: %s\nPlatform: %s/%s\n",
		BuildTime, goVersion(), runtime.GOOS, runtime.GOARCH))

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Config file path (default is $HOME/.config/uyadmin/config.yaml)")
	flags.BoolVar(&debugMode, "debug", false, "Enable debug logging")
	flags.String("api-url", "", "Backend base URL")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.String("log-format", "", "Log format (text, json)")
	flags.Duration("timeout", 0, "Per-request timeout")
	flags.StringP("output", "o", outputTable, "Output format (table, json, yaml)")

	rootCmd.AddCommand(newAuthCommand(container))
	rootCmd.AddCommand(newPropertyCommand(container))
	rootCmd.AddCommand(newCategoryCommand(container))
	rootCmd.AddCommand(newSavedCommand(container))
	rootCmd.AddCommand(NewDashboardCommand(container))
	rootCmd.AddCommand(NewConfigCommand(container))

	return rootCmd
}

// goVersion returns the Go version used to build the binary
func goVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		return info.GoVersion
	}
	return "unknown"
}

// FormatError turns command errors into the message shown to the user.
func FormatError(err error) string {
	var (
		failed  *domain.RequestFailedError
		network *domain.NetworkError
		invalid *domain.ValidationError
	)
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return "session expired, run `uyadmin auth login`"
	case errors.Is(err, domain.ErrNotLoggedIn):
		return "not logged in, run `uyadmin auth login`"
	case errors.Is(err, context.Canceled):
		return "interrupted"
	case errors.As(err, &invalid):
		return invalid.Error()
	case errors.As(err, &failed):
		return fmt.Sprintf("backend answered %d: %s", failed.Status, summarizeBody(failed.Body))
	case errors.As(err, &network):
		return fmt.Sprintf("cannot reach backend: %v", network.Err)
	default:
		return err.Error()
	}
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context, container *CLIContainer, args []string, stdout, stderr io.Writer) int {
	rootCmd := NewRootCommand(container)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", FormatError(err))
		return 1
	}
	return 0
}

// Main is Execute with the process's arguments and streams.
func Main(ctx context.Context, container *CLIContainer) int {
	return Execute(ctx, container, os.Args[1:], os.Stdout, os.Stderr)
}
