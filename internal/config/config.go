package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Uploader UploaderConfig
	Log      LogConfig
}

type UploaderConfig struct {
	BaseURL     string        `envconfig:"UPLOADER_BASE_URL" default:"http://localhost:4000"`
	PresignPath string        `envconfig:"UPLOADER_PRESIGN_PATH" default:"/presign"`
	Timeout     time.Duration `envconfig:"UPLOADER_TIMEOUT" default:"0s"`
}

type LogConfig struct {
	Level  string `envconfig:"UPLOADER_LOG_LEVEL" default:"info"`
	Format string `envconfig:"UPLOADER_LOG_FORMAT" default:"text"`
}

func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
