package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	defaultDBPath       = "./dev.db"
	defaultPort         = "8080"
	defaultEnv          = "development"
	defaultBusinessName = "Galaxy Fabrication Experts"
)

// Config holds application configuration sourced from config.yaml and the
// environment.
type Config struct {
	Env            string    `yaml:"app_env" mapstructure:"app_env"`
	DBPath         string    `yaml:"db_path" mapstructure:"db_path"`
	Port           string    `yaml:"port" mapstructure:"port"`
	BusinessName   string    `yaml:"business_name" mapstructure:"business_name"`
	CurrencySymbol string    `yaml:"currency_symbol" mapstructure:"currency_symbol"`
	CurrencyCode   string    `yaml:"currency_code" mapstructure:"currency_code"`
	Log            LogConfig `yaml:"log" mapstructure:"log"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// IsDev reports whether the app runs in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "" || c.Env == defaultEnv
}

// Load reads configuration. A local .env file is applied first without
// overriding variables already set; real deployments inject the environment.
func Load() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, eris.Wrap(err, "config: load .env")
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("app_env", defaultEnv)
	v.SetDefault("db_path", defaultDBPath)
	v.SetDefault("port", defaultPort)
	v.SetDefault("business_name", defaultBusinessName)
	v.SetDefault("currency_symbol", "₹")
	v.SetDefault("currency_code", "INR")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)
	return nil
}
