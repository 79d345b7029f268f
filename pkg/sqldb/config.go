package sqldb

import "time"

// Supported drivers.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

// Config describes the relational source the reindexer reads from.
type Config struct {
	Driver   string `env:"DB_DRIVER" envDefault:"mysql"` // mysql, pgx or sqlite
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     int    `env:"DB_PORT"` // 0 selects the driver default
	User     string `env:"DB_USER"`
	Password string `env:"DB_PASS"`
	Database string `env:"DB_DATABASE,required"` // schema name, or file path for sqlite
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	ConnectTimeout  time.Duration `env:"DB_CONNECT_TIMEOUT" envDefault:"10s"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"4"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"2"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`
	ConnMaxIdleTime time.Duration `env:"DB_CONN_MAX_IDLE_TIME" envDefault:"5m"`

	RetryAttempts int           `env:"DB_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval time.Duration `env:"DB_RETRY_INTERVAL" envDefault:"2s"`
}
