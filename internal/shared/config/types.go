package config

import "fmt"

type ServerConfig struct {
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// CryptoConfig carries the signing key pair, symmetric secret and integrity
// secret. Keys are read once at startup and never exposed outside the crypto
// services.
type CryptoConfig struct {
	SigningPrivateKey string `mapstructure:"signing_private_key"`
	SigningPublicKey  string `mapstructure:"signing_public_key"`
	SymmetricSecret   string `mapstructure:"symmetric_secret"`
	IntegritySecret   string `mapstructure:"integrity_secret"`
	BcryptCost        int    `mapstructure:"bcrypt_cost"`
}

// SerialConfig groups the lifecycle tunables: warning window, sweep cadences,
// lock TTL, cache TTL, sweep batch size and demo validity.
type SerialConfig struct {
	WarningWindowDays       int `mapstructure:"warning_window_days"`
	WarningSweepHours       int `mapstructure:"warning_sweep_hours"`
	EnforcementSweepMinutes int `mapstructure:"enforcement_sweep_minutes"`
	LockTTLSeconds          int `mapstructure:"lock_ttl_seconds"`
	CacheTTLMinutes         int `mapstructure:"cache_ttl_minutes"`
	SweepBatchSize          int `mapstructure:"sweep_batch_size"`
	DemoValidityDays        int `mapstructure:"demo_validity_days"`
}
