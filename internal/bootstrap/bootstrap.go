// Package bootstrap wires configuration, logging, the event bus and the
// relay HTTP server into a single supervised lifecycle.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/NickiMash17/AI-Image-Caption-Generator/internal/domain/eventbus"
	platformconfig "github.com/NickiMash17/AI-Image-Caption-Generator/internal/platform/config"
	platformerrors "github.com/NickiMash17/AI-Image-Caption-Generator/internal/platform/errors"
	"github.com/NickiMash17/AI-Image-Caption-Generator/internal/providers"
	"github.com/NickiMash17/AI-Image-Caption-Generator/internal/providers/ollama"
	"github.com/NickiMash17/AI-Image-Caption-Generator/internal/providers/openai"
	httptransport "github.com/NickiMash17/AI-Image-Caption-Generator/internal/transport/http"
	httpcaption "github.com/NickiMash17/AI-Image-Caption-Generator/internal/transport/http/caption"
	"github.com/NickiMash17/AI-Image-Caption-Generator/internal/utils"
)

type stepFn func(context.Context, *appState) error

type initStep struct {
	ID        string
	Title     string
	DependsOn []string
	Kind      platformerrors.Kind
	Execute   stepFn
}

type appState struct {
	config     *platformconfig.Config
	configPath string
	logger     *utils.Logger
	provider   providers.Provider
}

// Run starts the relay service lifecycle: load config, initialise
// dependencies, serve HTTP and shut down gracefully on SIGINT/SIGTERM.
func Run(ctx context.Context) error {
	state := &appState{}

	steps := InitGraph()
	if err := executeInitSteps(ctx, steps, state); err != nil {
		return err
	}

	config := state.config
	logger := state.logger
	if config == nil || logger == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"bootstrap state validation",
			"config/logger not initialised",
		)
	}
	if state.provider == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"bootstrap state validation",
			"upstream provider not initialised",
		)
	}

	logBootstrapGraph(steps, logger)

	rootCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	signalCtx, stop := signal.NotifyContext(rootCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(rootCtx)

	if _, err := startHTTPServer(config, logger, state.provider, group, groupCtx); err != nil {
		cancel()
		return err
	}

	if err := waitForShutdown(signalCtx, cancel, logger, group); err != nil {
		return err
	}

	logger.InfoTag("BOOT", "relay service stopped cleanly")
	logger.Close()
	return nil
}

func logBootstrapGraph(steps []initStep, logger *utils.Logger) {
	if logger == nil {
		return
	}
	logger.InfoTag("BOOT", "initialisation order:")
	for _, step := range steps {
		logger.InfoTag("BOOT", "  %s", step.Title)
	}
}

func executeInitSteps(ctx context.Context, steps []initStep, state *appState) error {
	if state == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"execute init steps",
			"nil bootstrap state",
		)
	}

	completed := make(map[string]struct{}, len(steps))
	for _, step := range steps {
		for _, dep := range step.DependsOn {
			if _, ok := completed[dep]; !ok {
				return platformerrors.New(
					platformerrors.KindBootstrap,
					step.ID,
					fmt.Sprintf("dependency %s not satisfied", dep),
				)
			}
		}
		if step.Execute == nil {
			return platformerrors.New(
				platformerrors.KindBootstrap,
				step.ID,
				"missing execute function",
			)
		}
		if err := step.Execute(ctx, state); err != nil {
			var typed *platformerrors.Error
			if errors.As(err, &typed) {
				return err
			}

			kind := step.Kind
			if kind == "" {
				kind = platformerrors.KindBootstrap
			}
			return platformerrors.Wrap(kind, step.ID, "bootstrap step failed", err)
		}
		completed[step.ID] = struct{}{}
	}
	return nil
}

func InitGraph() []initStep {
	return []initStep{
		{
			ID:      "config:load",
			Title:   "Load configuration",
			Kind:    platformerrors.KindConfig,
			Execute: loadConfigStep,
		},
		{
			ID:        "logging:init",
			Title:     "Initialise logging",
			DependsOn: []string{"config:load"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initLoggingStep,
		},
		{
			ID:        "eventbus:setup",
			Title:     "Setup event handlers",
			DependsOn: []string{"logging:init"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   setupEventBusStep,
		},
		{
			ID:        "provider:init",
			Title:     "Initialise upstream provider",
			DependsOn: []string{"config:load", "logging:init"},
			Kind:      platformerrors.KindProvider,
			Execute:   initProviderStep,
		},
	}
}

func loadConfigStep(_ context.Context, state *appState) error {
	result, err := platformconfig.NewLoader().WithDotEnv(true).Load()
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindConfig, "config:load", "failed to load configuration", err)
	}
	state.config = result.Config
	state.configPath = result.Path
	return nil
}

func initLoggingStep(_ context.Context, state *appState) error {
	if state == nil || state.config == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"logging:init",
			"config not loaded",
		)
	}

	logger, err := utils.NewLogger(&utils.LogCfg{
		LogLevel: state.config.Log.Level,
		LogDir:   state.config.Log.Dir,
		LogFile:  state.config.Log.File,
	})
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap, "logging:init", "failed to initialise logging", err)
	}

	state.logger = logger
	utils.DefaultLogger = logger

	logger.InfoTag("BOOT", "logging ready [%s] config=%s", state.config.Log.Level, state.configPath)
	return nil
}

func setupEventBusStep(_ context.Context, state *appState) error {
	if state == nil || state.logger == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"eventbus:setup",
			"logger not initialised",
		)
	}
	if err := eventbus.SetupEventHandlers(state.logger); err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap, "eventbus:setup", "failed to register event handlers", err)
	}
	return nil
}

func initProviderStep(_ context.Context, state *appState) error {
	if state == nil || state.config == nil || state.logger == nil {
		return platformerrors.New(
			platformerrors.KindProvider,
			"provider:init",
			"missing config/logger",
		)
	}

	provider, err := buildProvider(state.config, state.logger)
	if err != nil {
		return err
	}
	state.provider = provider

	state.logger.InfoTag("BOOT", "upstream provider ready: %s", provider.Name())
	return nil
}

func buildProvider(config *platformconfig.Config, logger *utils.Logger) (providers.Provider, error) {
	name, providerCfg, ok := config.SelectedProvider()
	if !ok {
		return nil, platformerrors.New(
			platformerrors.KindProvider,
			"provider:init",
			fmt.Sprintf("selected provider %q has no configuration", config.Selected.Provider),
		)
	}

	switch strings.ToLower(providerCfg.Type) {
	case "openai":
		provider, err := openai.New(providerCfg, logger)
		if err != nil {
			return nil, platformerrors.Wrap(platformerrors.KindProvider, "provider:init",
				fmt.Sprintf("failed to create openai provider %q", name), err)
		}
		return provider, nil
	case "ollama":
		provider, err := ollama.New(providerCfg, logger)
		if err != nil {
			return nil, platformerrors.Wrap(platformerrors.KindProvider, "provider:init",
				fmt.Sprintf("failed to create ollama provider %q", name), err)
		}
		return provider, nil
	default:
		return nil, platformerrors.New(
			platformerrors.KindProvider,
			"provider:init",
			fmt.Sprintf("unsupported provider type %q", providerCfg.Type),
		)
	}
}

func startHTTPServer(
	config *platformconfig.Config,
	logger *utils.Logger,
	provider providers.Provider,
	g *errgroup.Group,
	groupCtx context.Context,
) (*http.Server, error) {
	httpRouter, err := httptransport.Build(httptransport.Options{
		Config: config,
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}
	router := httpRouter.Engine

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found."})
			return
		}
		if config.Web.StaticDir != "" {
			c.File(config.Web.StaticDir + "/index.html")
			return
		}
		c.Status(http.StatusNotFound)
	})

	captionService, err := httpcaption.NewService(config, logger, provider)
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindTransport, "caption:new-service", "failed to create caption service", err)
	}
	if err := captionService.Register(groupCtx, router, httpRouter.API); err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindTransport, "caption:register", "failed to register caption routes", err)
	}

	httpServer := &http.Server{
		Addr:    ":" + strconv.Itoa(config.Server.Port),
		Handler: router,
	}

	g.Go(func() error {
		logger.InfoTag("HTTP", "relay listening on http://localhost:%d", config.Server.Port)

		go func() {
			<-groupCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.ErrorTag("HTTP", "server shutdown failed: %v", err)
			} else {
				logger.InfoTag("HTTP", "server shut down cleanly")
			}
		}()

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorTag("HTTP", "server failed: %v", err)
			return err
		}
		return nil
	})

	return httpServer, nil
}

func waitForShutdown(
	ctx context.Context,
	cancel context.CancelFunc,
	logger *utils.Logger,
	g *errgroup.Group,
) error {
	<-ctx.Done()
	logger.InfoTag("BOOT", "received shutdown signal: %v", context.Cause(ctx))

	cancel()

	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			logger.ErrorTag("BOOT", "error during shutdown: %v", err)
			return err
		}
		logger.InfoTag("BOOT", "all services stopped")
	case <-time.After(15 * time.Second):
		logger.ErrorTag("BOOT", "shutdown timed out, forcing exit")
		return errors.New("shutdown timed out")
	}
	return nil
}
