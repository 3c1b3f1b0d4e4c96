package settings

// Config holds the internal configuration for an Aggregator instance.
// It is populated by applying functional Options when a new Aggregator is
// created with New(). Not intended to be instantiated directly.
type Config struct {
	store  Store
	schema *Schema
	logger Logger
	wiper  RemoteWiper
}

// Option configures an Aggregator instance. Options are passed to New().
type Option func(*Config)

// WithStore sets the Store implementation used for persistence.
// This is a mandatory option for a functional Aggregator.
func WithStore(s Store) Option {
	return func(c *Config) {
		c.store = s
	}
}

// WithSchema sets the preference schema. Defaults to DefaultSchema().
func WithSchema(s *Schema) Option {
	return func(c *Config) {
		c.schema = s
	}
}

// WithLogger sets the Logger implementation.
// If not set, a default slog-backed logger writing to os.Stderr is used.
func WithLogger(l Logger) Option {
	return func(c *Config) {
		c.logger = l
	}
}

// WithRemoteWiper sets the collaborator that deletes remote user data
// before a local clear-all. Without one, ClearAll only resets local state.
func WithRemoteWiper(w RemoteWiper) Option {
	return func(c *Config) {
		c.wiper = w
	}
}
