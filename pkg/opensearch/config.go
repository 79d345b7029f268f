package opensearch

import "time"

// Config holds OpenSearch client connection parameters.
type Config struct {
	Addresses          []string      `env:"OPENSEARCH_ADDRESSES,required" envSeparator:","`
	Username           string        `env:"OPENSEARCH_USERNAME"`
	Password           string        `env:"OPENSEARCH_PASSWORD"`
	MaxRetries         int           `env:"OPENSEARCH_MAX_RETRIES" envDefault:"3"`
	DisableRetry       bool          `env:"OPENSEARCH_DISABLE_RETRY" envDefault:"false"`
	Timeout            time.Duration `env:"OPENSEARCH_TIMEOUT" envDefault:"60s"`                // response header timeout per request
	InsecureSkipVerify bool          `env:"OPENSEARCH_INSECURE_SKIP_VERIFY" envDefault:"false"` // self-signed cluster certificates
}
