package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "fieldhr"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv = "FIELDHR_APP_ENV"
	EnvDBDSN  = "FIELDHR_DB_DSN"
	EnvDBHost = "FIELDHR_DB_HOST"
	EnvDBUser = "FIELDHR_DB_USER"
	EnvDBName = "FIELDHR_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Password PasswordConfig
	Migrate  MigrateConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"FIELDHR_APP_ENV" required:"true"`
	Port         string `envconfig:"FIELDHR_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"FIELDHR_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FIELDHR_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"FIELDHR_DB_DSN"`

	LegacyHost     string `envconfig:"FIELDHR_DB_HOST"`
	LegacyPort     int    `envconfig:"FIELDHR_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FIELDHR_DB_USER"`
	LegacyPassword string `envconfig:"FIELDHR_DB_PASSWORD"`
	LegacyName     string `envconfig:"FIELDHR_DB_NAME"`
	LegacySSLMode  string `envconfig:"FIELDHR_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FIELDHR_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FIELDHR_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FIELDHR_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FIELDHR_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FIELDHR_REDIS_URL"`
	Address      string        `envconfig:"FIELDHR_REDIS_ADDR"`
	Password     string        `envconfig:"FIELDHR_REDIS_PASSWORD"`
	DB           int           `envconfig:"FIELDHR_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FIELDHR_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FIELDHR_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FIELDHR_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FIELDHR_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FIELDHR_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"FIELDHR_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"FIELDHR_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"FIELDHR_JWT_EXPIRATION_MINUTES" default:"720"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"FIELDHR_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"FIELDHR_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"FIELDHR_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"FIELDHR_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"FIELDHR_ARGON_KEY_LEN" default:"32"`
}

type MigrateConfig struct {
	AutoMigrate bool   `envconfig:"FIELDHR_AUTO_MIGRATE" default:"false"`
	Dir         string `envconfig:"FIELDHR_MIGRATIONS_DIR" default:"pkg/migrate/migrations"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
