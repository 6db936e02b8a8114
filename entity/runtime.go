package entity

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/tailored-agentic-units/entity/dispatch"
	"github.com/tailored-agentic-units/entity/observability"
	"github.com/tailored-agentic-units/entity/plugin"
	"github.com/tailored-agentic-units/entity/registry"
)

// RuntimeOption overrides a config-created runtime component.
type RuntimeOption func(*runtimeOptions)

type runtimeOptions struct {
	ctx      context.Context
	catalog  *plugin.Catalog
	plugins  []plugin.Plugin
	registry *registry.Registry
	queue    *dispatch.Queue
	observer observability.Observer
	logger   *slog.Logger
}

// WithContext sets the parent context for deferred loaders.
func WithContext(ctx context.Context) RuntimeOption {
	return func(o *runtimeOptions) { o.ctx = ctx }
}

// WithCatalog sets the catalog that Config.Plugins names resolve against.
func WithCatalog(c *plugin.Catalog) RuntimeOption {
	return func(o *runtimeOptions) { o.catalog = c }
}

// WithPlugins appends plugins after those named in the config.
func WithPlugins(plugins ...plugin.Plugin) RuntimeOption {
	return func(o *runtimeOptions) { o.plugins = append(o.plugins, plugins...) }
}

// WithRegistry overrides the runtime's registry.
func WithRegistry(r *registry.Registry) RuntimeOption {
	return func(o *runtimeOptions) { o.registry = r }
}

// WithQueue overrides the runtime's dispatch queue.
func WithQueue(q *dispatch.Queue) RuntimeOption {
	return func(o *runtimeOptions) { o.queue = q }
}

// WithObserver overrides the observer named in the config.
func WithObserver(obs observability.Observer) RuntimeOption {
	return func(o *runtimeOptions) { o.observer = obs }
}

// WithLogger overrides slog.Default.
func WithLogger(l *slog.Logger) RuntimeOption {
	return func(o *runtimeOptions) { o.logger = l }
}

// Runtime owns everything entities share: the registry used for bulk
// reset, the plugin collection read at construction, the dispatch queue
// deferred values resume on, and the observer and logger.
//
// A Runtime and its entities belong to one goroutine. Close releases
// deferred loaders and stops the queue.
type Runtime struct {
	id       string
	name     string
	registry *registry.Registry
	plugins  *plugin.Collection
	queue    *dispatch.Queue
	observer observability.Observer
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// NewRuntime builds a runtime from cfg (DefaultConfig when nil). Options
// replace the components cfg would otherwise create.
func NewRuntime(cfg *Config, opts ...RuntimeOption) (*Runtime, error) {
	c := DefaultConfig()
	if cfg != nil {
		c.Merge(cfg)
	}

	o := runtimeOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	observer := o.observer
	if observer == nil {
		obs, err := observability.GetObserver(c.Observer)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve observer: %w", err)
		}
		observer = obs
	}

	var configured []plugin.Plugin
	if len(c.Plugins) > 0 {
		catalog := o.catalog
		if catalog == nil {
			catalog, _ = plugin.NewCatalog()
		}
		resolved, err := catalog.Resolve(c.Plugins)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve plugins: %w", err)
		}
		configured = resolved
	}
	plugins := plugin.NewCollection(configured...)
	plugins.Add(o.plugins...)

	reg := o.registry
	if reg == nil {
		reg = registry.New()
	}
	queue := o.queue
	if queue == nil {
		queue = dispatch.New()
	}
	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}
	parent := o.ctx
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	return &Runtime{
		id:       uuid.Must(uuid.NewV7()).String(),
		name:     c.Name,
		registry: reg,
		plugins:  plugins,
		queue:    queue,
		observer: observer,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// ID returns the runtime's unique identifier.
func (r *Runtime) ID() string { return r.id }

// Name returns the configured runtime name.
func (r *Runtime) Name() string { return r.name }

// Registry returns the registry entities are recorded in.
func (r *Runtime) Registry() *registry.Registry { return r.registry }

// Plugins returns the plugin collection. Plugins added later apply only
// to entities constructed afterwards.
func (r *Runtime) Plugins() *plugin.Collection { return r.plugins }

// Queue returns the dispatch queue deferred initial values resume on.
func (r *Runtime) Queue() *dispatch.Queue { return r.queue }

// Observer returns the runtime's observer.
func (r *Runtime) Observer() observability.Observer { return r.observer }

// Logger returns the runtime's logger.
func (r *Runtime) Logger() *slog.Logger { return r.logger }

// Context is cancelled by Close.
func (r *Runtime) Context() context.Context { return r.ctx }

// ResetAll re-runs Init on every registered entity in construction order.
func (r *Runtime) ResetAll() error {
	observability.Emit(r.ctx, r.observer, EventRuntimeReset, observability.LevelInfo, r.name, map[string]any{
		"runtime_id": r.id,
		"entities":   r.registry.Len(),
	})
	return r.registry.ResetAll()
}

// Close closes the dispatch queue and then cancels pending deferred
// loaders, so a cancelled loader can no longer post. Continuations already
// queued can still be drained.
func (r *Runtime) Close() {
	r.queue.Close()
	r.cancel()
	observability.Emit(context.Background(), r.observer, EventRuntimeClosed, observability.LevelVerbose, r.name, map[string]any{
		"runtime_id": r.id,
	})
}
