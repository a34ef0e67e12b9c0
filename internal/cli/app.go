package cli

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/mesh-intelligence/devotional/internal/cache"
	"github.com/mesh-intelligence/devotional/internal/devotional"
	"github.com/mesh-intelligence/devotional/internal/generate"
	"github.com/mesh-intelligence/devotional/internal/logging"
	"github.com/mesh-intelligence/devotional/internal/sqlite"
	"github.com/mesh-intelligence/devotional/internal/verse"
)

// app wires the store and services for one command invocation.
type app struct {
	logger   *slog.Logger
	store    *sqlite.Backend
	cache    *cache.Accessor
	resolver *verse.Resolver
	importer *verse.Importer
}

// openApp attaches the store and builds the services. The caller must call
// close.
func (st *state) openApp() (*app, error) {
	lvl, err := st.cfg.Level()
	if err != nil {
		return nil, userError(err)
	}
	logger := logging.Init(os.Stderr, logging.Options{Level: lvl, Production: st.cfg.Production()})

	loc, err := st.cfg.Location()
	if err != nil {
		return nil, userError(err)
	}
	storeCfg, err := st.storeConfig()
	if err != nil {
		return nil, err
	}

	store := sqlite.NewBackend()
	if err := store.Attach(storeCfg); err != nil {
		return nil, sysError(fmt.Errorf("attach store: %w", err))
	}

	return &app{
		logger:   logger,
		store:    store,
		cache:    cache.New(store, cache.WithLogger(logger)),
		resolver: verse.NewResolver(store, verse.WithLocation(loc), verse.WithLogger(logger)),
		importer: verse.NewImporter(store, &http.Client{Timeout: 30 * time.Second}, logger),
	}, nil
}

func (a *app) close() {
	if err := a.store.Detach(); err != nil {
		a.logger.Warn("detach store", "error", err)
	}
}

// service builds the get-or-generate service from configuration.
func (st *state) service(a *app) (*devotional.Service, error) {
	gen := st.cfg.Generation
	if st.cfg.Secrets.OpenRouterAPIKey == "" {
		return nil, userError(fmt.Errorf("OPENROUTER_API_KEY is not set"))
	}

	text := generate.NewTextClient(generate.TextConfig{
		APIKey:     st.cfg.Secrets.OpenRouterAPIKey,
		BaseURL:    gen.BaseURL,
		Model:      gen.Model,
		MaxTokens:  gen.MaxTokens,
		MaxRetries: gen.MaxRetries,
	})

	opts := []devotional.Option{
		devotional.WithLogger(a.logger),
		devotional.WithDedupe(st.cfg.DedupeInflight),
	}
	if gen.ImageURL != "" {
		opts = append(opts, devotional.WithImages(generate.NewImageClient(generate.ImageConfig{
			URL:        gen.ImageURL,
			Width:      gen.ImageWidth,
			Height:     gen.ImageHeight,
			HTTPClient: &http.Client{Timeout: time.Minute},
		})))
	}
	return devotional.NewService(a.resolver, a.cache, text, opts...), nil
}
