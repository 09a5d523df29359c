package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Mode       string        `mapstructure:"mode"`
	Port       int           `mapstructure:"port" validate:"required,min=1,max=65535"`
	Secret     string        `mapstructure:"secret"`
	Logging    bool          `mapstructure:"logging"`
	Points     []string      `mapstructure:"points" validate:"required,min=1"`
	Words      []string      `mapstructure:"words" validate:"required,min=1"`
	ReadLimit  int64         `mapstructure:"read_limit" validate:"min=1"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("secret", "sprintpoker")
	v.SetDefault("logging", true)
	v.SetDefault("points", []string{"0", "0.5", "1", "2", "3", "5", "8", "13", "20", "40", "100", "?"})
	v.SetDefault("words", []string{
		"banana", "apple", "orange", "mango", "papaya", "kiwi",
		"cherry", "grape", "lemon", "plum", "peach", "fig",
	})
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("config file not found (%s), using defaults\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
