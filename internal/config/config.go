package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// ErrMissingCredentials reports that Telegram delivery credentials are absent.
// Callers map it to a dedicated exit code so a scheduler can tell a broken
// deployment from a failed run.
var ErrMissingCredentials = errors.New("missing telegram credentials")

type Config struct {
	Environment string           `mapstructure:"environment"`
	LogLevel    string           `mapstructure:"log_level"`
	LogFormat   string           `mapstructure:"log_format"`
	Telegram    TelegramConfig   `mapstructure:"telegram"`
	MarketData  MarketDataConfig `mapstructure:"market_data"`
	Analysis    AnalysisConfig   `mapstructure:"analysis"`
}

type TelegramConfig struct {
	BotToken          string `mapstructure:"bot_token" json:"-" yaml:"-"`
	ChatID            string `mapstructure:"chat_id"`
	RequestTimeout    int    `mapstructure:"request_timeout" validate:"min=1"`
	MaxAttempts       int    `mapstructure:"max_attempts" validate:"min=1"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds" validate:"min=1"`
}

type MarketDataConfig struct {
	BaseURL           string `mapstructure:"base_url" validate:"required"`
	Symbol            string `mapstructure:"symbol" validate:"required"`
	StartDate         string `mapstructure:"start_date" validate:"required,datetime=2006-01-02"`
	RequestTimeout    int    `mapstructure:"request_timeout" validate:"min=1"`
	MaxAttempts       int    `mapstructure:"max_attempts" validate:"min=1"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds" validate:"min=1"`
}

type AnalysisConfig struct {
	Lambda      float64 `mapstructure:"lambda" validate:"gt=0,lt=1"`
	RSIPeriod   int     `mapstructure:"rsi_period" validate:"min=2"`
	RangeWindow int     `mapstructure:"range_window" validate:"min=2"`
}

// Load reads configuration from an optional config file and the environment.
// Environment variables win over file values. Defaults: symbol ^VIX, start
// date 2010-01-01, three fetch attempts with a five second base retry delay,
// lambda 0.97.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	// Set default values
	setDefaults()

	// Enable environment variable support
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Bind the variables whose names predate the dotted key scheme
	for key, envName := range map[string]string{
		"telegram.bot_token":     "TELEGRAM_BOT_TOKEN",
		"telegram.chat_id":       "TELEGRAM_CHAT_ID",
		"market_data.start_date": "START_DATE",
		"market_data.symbol":     "VIX_SYMBOL",
	} {
		if err := viper.BindEnv(key, envName); err != nil {
			return nil, fmt.Errorf("failed to bind %s environment variable: %w", envName, err)
		}
	}

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, use defaults and environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Normalize environment to lowercase for consistent comparison
	config.Environment = strings.ToLower(config.Environment)

	return &config, nil
}

func setDefaults() {
	// Environment
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "text")

	// Telegram
	viper.SetDefault("telegram.bot_token", "")
	viper.SetDefault("telegram.chat_id", "")
	viper.SetDefault("telegram.request_timeout", 15)
	viper.SetDefault("telegram.max_attempts", 3)
	viper.SetDefault("telegram.retry_delay_seconds", 5)

	// Market Data
	viper.SetDefault("market_data.base_url", "https://query1.finance.yahoo.com")
	viper.SetDefault("market_data.symbol", "^VIX")
	viper.SetDefault("market_data.start_date", "2010-01-01")
	viper.SetDefault("market_data.request_timeout", 30)
	viper.SetDefault("market_data.max_attempts", 3)
	viper.SetDefault("market_data.retry_delay_seconds", 5)

	// Analysis
	viper.SetDefault("analysis.lambda", 0.97)
	viper.SetDefault("analysis.rsi_period", 14)
	viper.SetDefault("analysis.range_window", 252)
}

// ValidateCredentials checks that both Telegram credentials are present.
// Returned errors wrap ErrMissingCredentials.
func (c *Config) ValidateCredentials() error {
	var missing []string
	if strings.TrimSpace(c.Telegram.BotToken) == "" {
		missing = append(missing, "TELEGRAM_BOT_TOKEN")
	}
	if strings.TrimSpace(c.Telegram.ChatID) == "" {
		missing = append(missing, "TELEGRAM_CHAT_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}
	return nil
}

// Validate checks field constraints other than credential presence, so a
// present-but-broken configuration surfaces as an ordinary runtime failure.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		var fieldErrors validator.ValidationErrors
		if errors.As(err, &fieldErrors) {
			messages := make([]string, 0, len(fieldErrors))
			for _, fieldError := range fieldErrors {
				messages = append(messages, fmt.Sprintf("%s failed on %q", fieldError.Namespace(), fieldError.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(messages, "; "))
		}
		return err
	}
	return nil
}

// GetRequestTimeout returns the per-attempt Telegram send timeout.
//
// Returns:
//
//	time.Duration: The timeout duration.
func (c *TelegramConfig) GetRequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// GetRetryDelay returns the base delay for linear backoff between send
// attempts.
func (c *TelegramConfig) GetRetryDelay() time.Duration {
	return time.Duration(c.RetryDelaySeconds) * time.Second
}

// GetRequestTimeout returns the per-attempt market data fetch timeout.
//
// Returns:
//
//	time.Duration: The timeout duration.
func (c *MarketDataConfig) GetRequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// GetRetryDelay returns the base delay for linear backoff between attempts.
func (c *MarketDataConfig) GetRetryDelay() time.Duration {
	return time.Duration(c.RetryDelaySeconds) * time.Second
}
