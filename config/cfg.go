package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/shopdirect/shopdirect-manager/internal/analytics"
	httpapi "github.com/shopdirect/shopdirect-manager/internal/api/http"
	"github.com/shopdirect/shopdirect-manager/internal/query"
	"github.com/shopdirect/shopdirect-manager/internal/shopapi"
	"github.com/shopdirect/shopdirect-manager/log"
)

// Config represents the global configuration for the service.
type Config struct {
	Logger    log.Config       `mapstructure:"logger"`
	HTTP      httpapi.Config   `mapstructure:"http"`
	ShopAPI   shopapi.Config   `mapstructure:"shopapi"`
	Query     query.Config     `mapstructure:"query"`
	Analytics analytics.Config `mapstructure:"analytics"`
}

// LoadConfig loads the configuration from a file and/or environment
// variables. Environment variables take precedence over config file
// values; nested keys use double underscore, e.g. SHOPAPI__BASE_URL
// for shopapi.base_url.
func LoadConfig(cfgFile string) (*Config, error) {
	viper.SetConfigType("toml")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "__", "-", "__"))
	bindEnvVars()
	setDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %v", err)
			}
		}
	} else {
		viper.SetConfigName("config")
		viper.AddConfigPath("./config")
		viper.AddConfigPath("$HOME/config/shopdirect-manager")
		viper.AddConfigPath("/etc/shopdirect-manager")
		_ = viper.ReadInConfig()
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config into struct: %v", err)
	}

	return &config, nil
}

// bindEnvVars binds environment variables to config keys so flat names
// like HTTP_PORT work alongside the nested HTTP__PORT form.
func bindEnvVars() {
	bindings := map[string][]string{
		"logger.level":            {"LOGGER_LEVEL"},
		"logger.add_source":       {"LOGGER_ADD_SOURCE"},
		"http.port":               {"HTTP_PORT", "PORT"},
		"http.address":            {"HTTP_ADDRESS"},
		"http.allowed_origins":    {"HTTP_ALLOWED_ORIGINS"},
		"shopapi.base_url":        {"SHOPAPI_BASE_URL"},
		"shopapi.timeout":         {"SHOPAPI_TIMEOUT"},
		"shopapi.token":           {"SHOPAPI_TOKEN"},
		"query.stale_time":        {"QUERY_STALE_TIME"},
		"query.retry_count":       {"QUERY_RETRY_COUNT"},
		"query.retry_delay":       {"QUERY_RETRY_DELAY"},
		"analytics.returning_max": {"ANALYTICS_RETURNING_MAX"},
		"analytics.reorder_ratio": {"ANALYTICS_REORDER_RATIO"},
	}
	for key, envs := range bindings {
		args := append([]string{key}, envs...)
		_ = viper.BindEnv(args...)
	}
}

func setDefaults() {
	viper.SetDefault("http.port", "8081")
	viper.SetDefault("http.address", "")
	viper.SetDefault("http.allowed_origins", []string{"*"})
	viper.SetDefault("shopapi.base_url", "http://localhost:3000/api/v4")
	viper.SetDefault("shopapi.timeout", "15s")
}
