package ingest

import (
	"github.com/erraggy/pipetools/pipeline"
)

// Option configures a Validate or Parse operation.
type Option func(*config) error

type config struct {
	registry *Registry
	engine   pipeline.ScriptEngine
	logger   pipeline.Logger
}

// applyOptions applies option functions over the defaults.
func applyOptions(opts ...Option) (*config, error) {
	cfg := &config{
		registry: Default(),
		logger:   pipeline.NopLogger{},
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// WithRegistry selects the registry to resolve discriminators against.
// Default: the shared Default() registry.
func WithRegistry(reg *Registry) Option {
	return func(cfg *config) error {
		cfg.registry = reg
		return nil
	}
}

// WithScriptEngine supplies the engine backing record-level "if"
// conditions. Without one, any conditioned processor is skipped at run
// time.
func WithScriptEngine(engine pipeline.ScriptEngine) Option {
	return func(cfg *config) error {
		cfg.engine = engine
		return nil
	}
}

// WithLogger sets the logger wired into converted pipelines.
// Default: NopLogger.
func WithLogger(logger pipeline.Logger) Option {
	return func(cfg *config) error {
		cfg.logger = logger
		return nil
	}
}
