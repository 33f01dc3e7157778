// SPDX-License-Identifier: EPL-2.0

// Package config loads the player settings from defaults, an optional yaml
// file and AUDFLOW_* environment variables.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/ik5/audflow/audio"
	"github.com/ik5/audflow/engine"
	"github.com/ik5/audflow/logger"
	"github.com/ik5/audflow/preview"
	"github.com/ik5/audflow/sink"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

const (
	Name      = "audflow"
	EnvPrefix = "AUDFLOW"
)

// EnvKeyReplacer maps config keys to environment names: audio.backend is
// read from AUDFLOW_AUDIO_BACKEND.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// SearchPaths are tried in order when no file is given.
var SearchPaths = []string{".", "$HOME/.config/audflow"}

type DecoderConfig struct {
	// PacketFrames bounds the frames per packet of decoded streams.
	PacketFrames int `mapstructure:"packet_frames"`
}

type Config struct {
	Audio   sink.Config    `mapstructure:"audio"`
	Decoder DecoderConfig  `mapstructure:"decoder"`
	Preview preview.Config `mapstructure:"preview"`
	Engine  engine.Config  `mapstructure:"engine"`
	Logging logger.Config  `mapstructure:"logging"`
}

func DefaultConfig() Config {
	return Config{
		Audio:   sink.DefaultConfig(),
		Decoder: DecoderConfig{PacketFrames: audio.DefaultPacketFrames},
		Preview: preview.DefaultConfig(),
		Engine:  engine.DefaultConfig(),
		Logging: logger.DefaultConfig(),
	}
}

// Defaults flattens DefaultConfig into viper keys.
func Defaults() map[string]any {
	d := DefaultConfig()

	return map[string]any{
		"audio.backend":       d.Audio.Backend,
		"audio.device_rate":   d.Audio.DeviceRate,
		"audio.latency":       d.Audio.Latency,
		"audio.buffer":        d.Audio.Buffer,
		"audio.write_timeout": d.Audio.WriteTimeout,
		"audio.record_path":   d.Audio.RecordPath,

		"decoder.packet_frames": d.Decoder.PacketFrames,

		"preview.chunk_frames": d.Preview.ChunkFrames,
		"preview.strategy":     d.Preview.Strategy,
		"preview.prescan":      d.Preview.Prescan,
		"preview.prescan_step": d.Preview.PrescanStep,

		"engine.inbox_size":        d.Engine.InboxSize,
		"engine.event_buffer":      d.Engine.EventBuffer,
		"engine.max_decode_errors": d.Engine.MaxDecodeErrors,
		"engine.max_resets":        d.Engine.MaxResets,
		"engine.skip_step":         d.Engine.SkipStep,

		"logging.level":       d.Logging.Level,
		"logging.file":        d.Logging.File,
		"logging.max_size":    d.Logging.MaxSize,
		"logging.max_backups": d.Logging.MaxBackups,
		"logging.max_age":     d.Logging.MaxAge,
		"logging.compress":    d.Logging.Compress,
		"logging.console":     d.Logging.Console,
	}
}

// ConfigError is a validation failure of one section.
type ConfigError struct {
	Section string
	Err     error
}

func (e *ConfigError) Error() string { return e.Section + ": " + e.Err.Error() }
func (e *ConfigError) Unwrap() error { return e.Err }

func (c Config) Validate() error {
	var errs []error

	check := func(section string, err error) {
		if err != nil {
			errs = append(errs, &ConfigError{Section: section, Err: err})
		}
	}

	check("audio", c.Audio.Validate())
	if c.Decoder.PacketFrames <= 0 {
		check("decoder", fmt.Errorf("packet_frames must be positive, got %d", c.Decoder.PacketFrames))
	}
	check("preview", c.Preview.Validate())
	check("engine", c.Engine.Validate())
	check("logging", c.Logging.Validate())

	return errors.Join(errs...)
}

// New returns a viper instance with defaults and environment bindings,
// reading files from fs.
func New(fs afero.Fs) *viper.Viper {
	v := viper.New()
	v.SetFs(fs)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(EnvKeyReplacer)
	v.AutomaticEnv()

	v.SetTypeByDefaultValue(true)
	for key, value := range Defaults() {
		v.SetDefault(key, value)
	}

	return v
}

// Read loads file, or searches SearchPaths for audflow.yaml when file is
// empty. A missing file is only an error when it was named explicitly.
func Read(v *viper.Viper, file string) error {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(Name)
		v.SetConfigType("yaml")
		for _, p := range SearchPaths {
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}

	return nil
}

// Decode unmarshals and validates the settings held by v.
func Decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Load is New, Read and Decode in one step.
func Load(fs afero.Fs, file string) (Config, *viper.Viper, error) {
	v := New(fs)
	if err := Read(v, file); err != nil {
		return Config{}, v, err
	}
	cfg, err := Decode(v)
	return cfg, v, err
}

// Settings lists every effective setting as "key = value", sorted by key.
func Settings(v *viper.Viper) []string {
	keys := v.AllKeys()
	slices.Sort(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s = %v", k, v.Get(k)))
	}
	return lines
}
