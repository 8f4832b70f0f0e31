// Package config loads pert settings from defaults, a pert.yaml file, a
// .env file and PERT_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/YahyaHajji/Pert-Diagram-generation/internal/logging"
	"github.com/YahyaHajji/Pert-Diagram-generation/internal/planner"
)

// EnvPrefix is prepended to every environment variable, e.g. PERT_UNIT or
// PERT_REPORT_PAGE_SIZE.
const EnvPrefix = "PERT"

type Config struct {
	Unit             string         `mapstructure:"unit" validate:"required"`
	Precision        int            `mapstructure:"precision" validate:"gte=1,lte=9"`
	MaxCriticalPaths int            `mapstructure:"max_critical_paths" validate:"gte=1"`
	Report           ReportConfig   `mapstructure:"report"`
	Server           ServerConfig   `mapstructure:"server"`
	Log              logging.Config `mapstructure:"log"`
}

type ReportConfig struct {
	Template string `mapstructure:"template"`
	PageSize int    `mapstructure:"page_size" validate:"gt=0"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr" validate:"required"`
}

// PlanConfig returns the presentation settings for planner.Generate.
func (c *Config) PlanConfig() planner.PlanConfig {
	return planner.PlanConfig{
		Unit:               c.Unit,
		Precision:          c.Precision,
		PageSize:           c.Report.PageSize,
		ReportTemplatePath: c.Report.Template,
	}
}

type loaderConfig struct {
	configFile  string
	envFile     string
	searchPaths []string
}

// Option tunes Load.
type Option func(*loaderConfig)

// WithConfigFile uses path instead of searching for pert.yaml. A missing
// explicit file is an error.
func WithConfigFile(path string) Option {
	return func(lc *loaderConfig) { lc.configFile = path }
}

// WithEnvFile loads variables from path instead of ./.env.
func WithEnvFile(path string) Option {
	return func(lc *loaderConfig) { lc.envFile = path }
}

// WithSearchPath adds a directory to look for pert.yaml in.
func WithSearchPath(dir string) Option {
	return func(lc *loaderConfig) { lc.searchPaths = append(lc.searchPaths, dir) }
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("unit", "days")
	v.SetDefault("precision", 1)
	v.SetDefault("max_critical_paths", 64)
	v.SetDefault("report.template", "")
	v.SetDefault("report.page_size", 40)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", logging.FormatConsole)
	v.SetDefault("log.output", "stderr")
	v.SetDefault("log.no_color", false)
}

// Load resolves the configuration.
func Load(opts ...Option) (*Config, error) {
	lc := loaderConfig{envFile: ".env"}
	for _, opt := range opts {
		opt(&lc)
	}
	if len(lc.searchPaths) == 0 {
		lc.searchPaths = []string{"."}
	}

	v := viper.New()
	setDefaults(v)

	if lc.configFile != "" {
		v.SetConfigFile(lc.configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", lc.configFile, err)
		}
	} else {
		v.SetConfigName("pert")
		v.SetConfigType("yaml")
		for _, p := range lc.searchPaths {
			v.AddConfigPath(p)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	// Variables already set in the environment win over the .env file.
	if _, err := os.Stat(lc.envFile); err == nil {
		if err := godotenv.Load(lc.envFile); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", lc.envFile, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("mapstructure"), ",", 2)[0]
	})
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s fails %q (got %v)", strings.ToLower(fe.Namespace()), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
