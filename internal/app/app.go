// Package app wires all Suara subsystems into a running HTTP server.
//
// The App struct owns the full lifecycle: New creates and connects all
// subsystems, Run serves until the context is cancelled, and Shutdown tears
// everything down in order.
//
// For testing, inject doubles via functional options (WithProfileStore,
// WithVoiceprintStore). When an option is not provided, New creates real
// implementations from the config.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wanhafiz/suara/internal/config"
	"github.com/wanhafiz/suara/internal/dialog"
	"github.com/wanhafiz/suara/internal/dialog/intent"
	"github.com/wanhafiz/suara/internal/health"
	"github.com/wanhafiz/suara/internal/httpapi"
	"github.com/wanhafiz/suara/internal/observe"
	"github.com/wanhafiz/suara/internal/profile"
	profilepg "github.com/wanhafiz/suara/internal/profile/postgres"
	"github.com/wanhafiz/suara/internal/reply"
	"github.com/wanhafiz/suara/internal/voiceprint"
	voiceprintpg "github.com/wanhafiz/suara/internal/voiceprint/postgres"
	"github.com/wanhafiz/suara/pkg/provider/llm"
	"github.com/wanhafiz/suara/pkg/provider/stt"
)

// shutdownGrace bounds the HTTP server drain during Shutdown.
const shutdownGrace = 10 * time.Second

// Providers holds one interface value per provider slot. Nil means the
// provider is not configured: without an LLM the classifier runs keyword-only,
// without STT the API accepts text turns only. Populated by main.go via the
// config registry.
type Providers struct {
	LLM llm.Provider
	STT stt.Transcriber
}

// App owns all subsystem lifetimes.
type App struct {
	cfg       *config.Config
	providers *Providers

	// Subsystems, initialised in New and torn down in Shutdown.
	metrics  *observe.Metrics
	profiles profile.Store
	prints   voiceprint.Store
	sessions *dialog.Store
	machine  *dialog.Machine
	server   *http.Server

	// closers are called in order during Shutdown.
	closers []func(context.Context) error

	// stopOnce guards the Shutdown path.
	stopOnce sync.Once
}

// Option is a functional option for New. Use these to inject test doubles.
type Option func(*App)

// WithProfileStore injects a profile store instead of creating one from config.
func WithProfileStore(s profile.Store) Option {
	return func(a *App) { a.profiles = s }
}

// WithVoiceprintStore injects a voiceprint store instead of creating one from config.
func WithVoiceprintStore(s voiceprint.Store) Option {
	return func(a *App) { a.prints = s }
}

// New creates an App by wiring all subsystems together. The providers struct
// comes from main.go (populated via the config registry). Use Option functions
// to inject test doubles for any subsystem.
func New(ctx context.Context, cfg *config.Config, providers *Providers, opts ...Option) (*App, error) {
	a := &App{
		cfg:       cfg,
		providers: providers,
	}
	for _, o := range opts {
		o(a)
	}

	if err := a.initObservability(ctx); err != nil {
		return nil, fmt.Errorf("app: init observability: %w", err)
	}
	if err := a.initStores(ctx); err != nil {
		return nil, fmt.Errorf("app: init stores: %w", err)
	}
	a.initMachine()
	a.initServer()

	return a, nil
}

// initObservability registers the global OTel providers and the application
// metrics.
func (a *App) initObservability(ctx context.Context) error {
	shutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName: "suara",
	})
	if err != nil {
		return err
	}
	a.closers = append(a.closers, shutdown)
	a.metrics = observe.DefaultMetrics()
	return nil
}

// initStores connects the profile and voiceprint stores. Without a database
// DSN, profile lookups serve the documented defaults and voiceprint
// authentication stays disabled.
func (a *App) initStores(ctx context.Context) error {
	dsn := a.cfg.Database.DSN

	if a.profiles == nil {
		if dsn == "" {
			slog.Warn("no database configured, profile lookups serve defaults")
			a.profiles = profile.Defaults{}
		} else {
			store, err := profilepg.NewStore(ctx, dsn, slog.Default())
			if err != nil {
				return fmt.Errorf("connect profile store: %w", err)
			}
			a.profiles = store
			a.closers = append(a.closers, func(context.Context) error {
				store.Close()
				return nil
			})
		}
	}

	if a.prints == nil && dsn != "" {
		store, err := voiceprintpg.NewStore(ctx, dsn)
		if err != nil {
			return fmt.Errorf("connect voiceprint store: %w", err)
		}
		a.prints = store
		a.closers = append(a.closers, func(context.Context) error {
			store.Close()
			return nil
		})
	}

	return nil
}

// initMachine builds the classifier and the dialogue state machine.
func (a *App) initMachine() {
	var classifier dialog.Classifier
	if a.providers.LLM != nil {
		classifier = intent.NewClassifier(
			a.providers.LLM,
			intent.WithRetryPolicy(a.retryPolicy()),
			intent.WithFallbackHook(func(reason string) {
				a.metrics.RecordFallback(context.Background(), reason)
			}),
		)
	} else {
		slog.Warn("no llm provider configured, classification is keyword-only")
		classifier = intent.NewKeywordClassifier()
	}

	a.sessions = dialog.NewStore()
	a.machine = dialog.NewMachine(classifier, a.sessions, a.profiles, reply.DefaultCatalog)
}

// retryPolicy builds the classifier retry policy from config, keeping the
// defaults for unset values.
func (a *App) retryPolicy() intent.RetryPolicy {
	policy := intent.DefaultRetryPolicy()
	if v := a.cfg.Classifier.MaxAttempts; v > 0 {
		policy.MaxAttempts = v
	}
	if v := a.cfg.Classifier.AttemptDelay.Std(); v > 0 {
		policy.AttemptDelay = v
	}
	if v := a.cfg.Classifier.BackoffBase.Std(); v > 0 {
		policy.BackoffBase = v
	}
	return policy
}

// initServer assembles the HTTP API and the readiness checkers.
func (a *App) initServer() {
	var checkers []health.Checker
	if pinger, ok := a.profiles.(health.Pinger); ok {
		checkers = append(checkers, health.PingChecker("database", pinger))
	}
	if baseURL := a.cfg.Providers.STT.BaseURL; a.providers.STT != nil && baseURL != "" {
		checkers = append(checkers, health.EndpointChecker("stt", baseURL, nil))
	}

	apiOpts := []httpapi.Option{
		httpapi.WithMetrics(a.metrics),
		httpapi.WithHealth(health.New(checkers...)),
	}
	if a.providers.STT != nil {
		apiOpts = append(apiOpts, httpapi.WithTranscriber(a.providers.STT))
	}
	if a.prints != nil {
		apiOpts = append(apiOpts, httpapi.WithMatcher(
			voiceprint.NewMatcher(a.prints, a.cfg.Voiceprint.Threshold)))
	}

	api := httpapi.NewServer(a.machine, a.sessions, apiOpts...)
	a.server = &http.Server{
		Addr:              a.cfg.Server.ListenAddr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests.
// Returns nil on a clean shutdown.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("http server listening",
			slog.String("addr", a.cfg.Server.ListenAddr),
			slog.Bool("tls", a.cfg.Server.TLS != nil))

		var err error
		if tls := a.cfg.Server.TLS; tls != nil {
			err = a.server.ListenAndServeTLS(tls.CertFile, tls.KeyFile)
		} else {
			err = a.server.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-ctx.Done()
		drainCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return a.server.Shutdown(drainCtx)
	})

	return g.Wait()
}

// Shutdown tears down all subsystems in init order. It respects the context
// deadline: if ctx expires before all closers finish, remaining closers are
// skipped and the context error is returned.
func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error
	a.stopOnce.Do(func() {
		slog.Info("shutting down", slog.Int("closers", len(a.closers)))

		for i, closer := range a.closers {
			select {
			case <-ctx.Done():
				slog.Warn("shutdown deadline exceeded",
					slog.Int("remaining", len(a.closers)-i))
				shutdownErr = ctx.Err()
				return
			default:
			}
			if err := closer(ctx); err != nil {
				slog.Warn("closer error", slog.Int("index", i), slog.String("err", err.Error()))
			}
		}

		slog.Info("shutdown complete")
	})
	return shutdownErr
}
