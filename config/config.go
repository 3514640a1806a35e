package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Sim  SimConfig  `mapstructure:"sim"`
	Data DataConfig `mapstructure:"data"`
	Log  LogConfig  `mapstructure:"log"`
}

type SimConfig struct {
	TickMs             int           `mapstructure:"tick_ms"`
	DetectionBatchSize int           `mapstructure:"detection_batch_size"`
	SampleIntervalMs   int           `mapstructure:"sample_interval_ms"` // default vision cadence for archetypes that omit it
	Duration           time.Duration `mapstructure:"duration"`           // 0: run until interrupted
	RealTime           bool          `mapstructure:"real_time"`          // pace steps to wall time
	StatusEvery        time.Duration `mapstructure:"status_every"`       // periodic agent status log
}

type DataConfig struct {
	Dir string `mapstructure:"dir"`
}

type LogConfig struct {
	Debug bool `mapstructure:"debug"`
}

// Load reads config from the given YAML file path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Defaults
	v.SetDefault("sim.tick_ms", 50)
	v.SetDefault("sim.detection_batch_size", 4)
	v.SetDefault("sim.sample_interval_ms", 150)
	v.SetDefault("sim.duration", "0s")
	v.SetDefault("sim.real_time", true)
	v.SetDefault("sim.status_every", "5s")
	v.SetDefault("data.dir", "./data")
	v.SetDefault("log.debug", false)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
