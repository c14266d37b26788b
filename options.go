package biascal

import "time"

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addrs    []string
	username string
	password string
	db       int

	keyPrefix     string
	bootstrapSeed int64
	maxBatchSize  int

	readinessTimeout time.Duration
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedisCluster configures the client with multiple seed addresses.
func WithRedisCluster(addrs []string, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = addrs
		c.password = password
	})
}

// WithUsername sets the database ACL username.
func WithUsername(username string) Option {
	return optionFunc(func(c *clientConfig) {
		c.username = username
	})
}

// WithDB selects a logical Redis database.
func WithDB(db int) Option {
	return optionFunc(func(c *clientConfig) {
		c.db = db
	})
}

// WithKeyPrefix overrides the key namespace. Default: "biascal:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithBootstrapSeed fixes the bootstrap RNG seed for reproducible intervals.
func WithBootstrapSeed(seed int64) Option {
	return optionFunc(func(c *clientConfig) {
		c.bootstrapSeed = seed
	})
}

// WithMaxBatchSize sets the maximum number of samples per AddSamples call.
// Default: 500.
func WithMaxBatchSize(size int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxBatchSize = size
	})
}

// WithReadinessTimeout bounds the initial database readiness wait.
// Default: 10s.
func WithReadinessTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.readinessTimeout = d
	})
}
