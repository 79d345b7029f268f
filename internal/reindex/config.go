package reindex

import (
	"time"

	"github.com/dmitrymomot/reindexer/pkg/config"
)

// Config holds per-entity run settings. Keys are prefixed with the entity
// name, e.g. PRODUCTS_LIMIT.
type Config struct {
	BatchBytes   int           `env:"BATCH_BYTES" envDefault:"5242880"`
	BulkWorkers  int           `env:"BULK_WORKERS" envDefault:"1"`
	Limit        int           `env:"LIMIT" envDefault:"0"` // 0 means all rows
	PhaseTimeout time.Duration `env:"PHASE_TIMEOUT" envDefault:"30m"`
	AtomicAlias  bool          `env:"ATOMIC_ALIAS" envDefault:"true"`
	ResetTarget  bool          `env:"RESET_TARGET" envDefault:"true"`
	AbortOnEmpty bool          `env:"ABORT_ON_EMPTY" envDefault:"false"`
	Shards       int           `env:"SHARDS" envDefault:"0"`    // 0 keeps the entity schema
	Replicas     int           `env:"REPLICAS" envDefault:"-1"` // negative keeps the entity schema
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		BatchBytes:   5 << 20,
		BulkWorkers:  1,
		PhaseTimeout: 30 * time.Minute,
		AtomicAlias:  true,
		ResetTarget:  true,
		Replicas:     -1,
	}
}

// LoadConfig reads the run settings of one entity from the environment.
func LoadConfig(entity string) (Config, error) {
	var cfg Config
	if err := config.LoadPrefixed(entity, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
