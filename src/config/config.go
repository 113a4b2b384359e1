package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Service   ServiceConfig   `mapstructure:"service"`
	Databases DatabasesConfig `mapstructure:"databases"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Bootstrap BootstrapConfig `mapstructure:"bootstrap"`
	Worker    WorkerConfig    `mapstructure:"worker"`
	Cache     CacheConfig     `mapstructure:"cache"`
}

type ServiceType string

const (
	API    ServiceType = "API"
	WORKER ServiceType = "WORKER"
)

type ServiceConfig struct {
	Type        ServiceType `mapstructure:"type"`
	Port        string      `mapstructure:"port"`
	CORSOrigins []string    `mapstructure:"corsOrigins"`
}

type DatabasesConfig struct {
	SQL   SQLConfig   `mapstructure:"sql"`
	Redis RedisConfig `mapstructure:"redis"`
}

// SQLConfig selects the entity store. Driver "memory" runs without Postgres.
type SQLConfig struct {
	Host             string `mapstructure:"host"`
	Port             string `mapstructure:"port"`
	Username         string `mapstructure:"username"`
	Password         string `mapstructure:"password"`
	Driver           string `mapstructure:"driver"`
	Database         string `mapstructure:"database"`
	ConnectionString string `mapstructure:"connection_string"`
	MaxConns         int32  `mapstructure:"maxConns"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database int    `mapstructure:"database"`
	TLS      bool   `mapstructure:"tls"`
}

type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	ToFile   bool   `mapstructure:"toFile"`
	FilePath string `mapstructure:"filePath"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwtSecret"`
	TokenTTL  string `mapstructure:"tokenTTL"`
}

type BootstrapConfig struct {
	Admin                 bool   `mapstructure:"admin"`
	AdminEmail            string `mapstructure:"adminEmail"`
	AdminPassword         string `mapstructure:"adminPassword"`
	AdminPasswordSecretID string `mapstructure:"adminPasswordSecretId"`
	AWSRegion             string `mapstructure:"awsRegion"`
	SeedDevData           bool   `mapstructure:"seedDevData"`
}

type WorkerConfig struct {
	AuditCron string `mapstructure:"auditCron"`
}

type CacheConfig struct {
	PortfolioTTL string `mapstructure:"portfolioTTL"`
}

// LoadConfig reads appsettings.yaml from path and, when env is not empty,
// merges appsettings.<env>.yaml on top of it. Environment variables such as
// DATABASES_SQL_HOST override both files.
func LoadConfig(path string, env string) (*Config, error) {
	var cfg Config

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("appsettings")
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	if env != "" {
		v.SetConfigName("appsettings." + env)
		if err := v.MergeInConfig(); err != nil {
			return nil, err
		}
	}

	err = v.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service.type", string(API))
	v.SetDefault("service.port", "8000")
	v.SetDefault("databases.sql.driver", "postgres")
	v.SetDefault("databases.sql.maxConns", 5)
	v.SetDefault("logging.level", "info")
	v.SetDefault("auth.tokenTTL", "24h")
	v.SetDefault("worker.auditCron", "@every 1h")
	v.SetDefault("cache.portfolioTTL", "5m")
}
