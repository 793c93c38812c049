package di

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"uyadmin.io/cli/internal/application/services"
	"uyadmin.io/cli/internal/config"
	httpdomain "uyadmin.io/cli/internal/core/domain/http"
	authhttp "uyadmin.io/cli/internal/http"
	"uyadmin.io/cli/internal/infrastructure/api"
	"uyadmin.io/cli/internal/infrastructure/auth"
	infrahttp "uyadmin.io/cli/internal/infrastructure/http"
	"uyadmin.io/cli/internal/interfaces/cli"
	"uyadmin.io/cli/internal/logging"
)

// Container holds all application dependencies
type Container struct {
	// Infrastructure
	Store     *auth.FileCredentialStore
	Requester *infrahttp.StdHttpRequester
	Refresher *services.AuthRefreshService
	Client    *authhttp.AuthenticatedClient

	// CLI
	CLIContainer *cli.CLIContainer

	// Logger
	Logger *logrus.Logger
}

// NewContainer creates the dependency injection container. Services are wired
// lazily once the command line and config files have been resolved.
func NewContainer() *Container {
	c := &Container{}
	c.CLIContainer = &cli.CLIContainer{
		Loader: config.NewLoader(),
		Build:  c.wire,
	}
	return c
}

// wire builds the service graph for cfg
func (c *Container) wire(cfg *config.Config) error {
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	c.Logger = logger

	// 1. Credential storage
	store, err := auth.NewFileCredentialStore(cfg.CredentialsFile, cfg.EncryptCredentials)
	if err != nil {
		return fmt.Errorf("failed to open credential store: %w", err)
	}
	c.Store = store

	// 2. Transport
	endpoint := httpdomain.BackendEndpoint{BaseURL: cfg.APIURL, UserAgent: userAgent(cfg.UserAgent)}
	c.Requester = infrahttp.NewStdHttpRequester(endpoint, cfg.Timeout,
		infrahttp.WithRateLimit(cfg.RateLimit, cfg.RateBurst),
		infrahttp.WithLogger(logger),
	)

	// 3. Token refresh and the authenticated client
	provider := auth.NewHTTPTokenProvider(c.Requester)
	c.Refresher = services.NewAuthRefreshService(provider, store, cfg.RefreshTimeout, logger)
	c.Client = authhttp.NewAuthenticatedClient(c.Requester, store, c.Refresher, logger)

	// 4. Backend services
	gateway := api.NewGateway(c.Client)
	properties := api.NewPropertyService(gateway)
	saved := api.NewSavedPropertyService(gateway)
	categories := api.NewCategoryService(gateway)

	cc := c.CLIContainer
	cc.Logger = logger
	cc.Auth = api.NewAuthService(c.Requester, store, provider, logger)
	cc.Properties = properties
	cc.Saved = saved
	cc.Categories = categories
	cc.Dashboard = services.NewDashboardService(properties, saved, categories, logger)

	logger.WithFields(logrus.Fields{
		"api_url":     cfg.APIURL,
		"credentials": cfg.CredentialsFile,
		"config":      cfg.Source,
	}).Debug("Dependency injection container initialized")
	return nil
}

// GetCLIContainer returns the CLI container for command execution
func (c *Container) GetCLIContainer() *cli.CLIContainer {
	return c.CLIContainer
}

// GetVersion returns version information
func (c *Container) GetVersion() map[string]string {
	return map[string]string{
		"version":    cli.Version,
		"build_time": cli.BuildTime,
	}
}

// Shutdown releases idle backend connections.
func (c *Container) Shutdown(ctx context.Context) error {
	if c.Requester != nil {
		c.Requester.CloseIdleConnections()
	}
	if c.Logger != nil {
		c.Logger.Debug("Application shutdown complete")
	}
	return ctx.Err()
}

func userAgent(base string) string {
	if base == "" {
		base = "uyadmin-cli"
	}
	return fmt.Sprintf("%s/%s", base, cli.Version)
}
