// Package config loads pixlfx settings from defaults, a YAML file,
// PIXLFX_* environment variables and command line flags, in rising order.
package config

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/samber/lo"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/0bVdnt/PixlFX/internal/filesystem"
)

const Name = "pixlfx"

var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Setup registers defaults and env bindings and reads the config file.
// file overrides the search for pixlfx.yaml in the working directory.
// A missing default file is not an error; a missing explicit one is.
func Setup(file string) error {
	viper.SetFs(filesystem.API())
	if file != "" {
		viper.SetConfigFile(file)
	} else {
		viper.SetConfigName(Name)
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix(Name)
	viper.SetEnvKeyReplacer(EnvKeyReplacer)
	for _, k := range Keys() {
		viper.MustBindEnv(k)
	}

	viper.SetTypeByDefaultValue(true)
	for name, field := range Default {
		viper.SetDefault(name, field.Value)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("config: read: %w", err)
	}
	return nil
}

// Settings is a typed snapshot of the effective configuration.
type Settings struct {
	Sources       []string
	AutoPlay      bool
	Looping       bool
	HideDelay     time.Duration
	PollInterval  time.Duration
	ViewportW     int
	ViewportH     int
	FrameInterval time.Duration

	CaptureDir       string
	CaptureFormat    string
	CaptureQuality   int
	CaptureKeep      int
	CaptureSerialize bool

	AmbientEnabled      bool
	AmbientDelay        time.Duration
	AmbientImageFade    time.Duration
	AmbientGradientFade time.Duration
	AmbientCrossfade    time.Duration
	AmbientBlur         float64
	GradientColors      []string
	GradientAlphas      []float64
	DefaultFrame        string

	CrossfadeDuration time.Duration
	CrossfadeReverse  bool

	LogPath  string
	LogLevel string
}

func millis(key string) time.Duration {
	return time.Duration(viper.GetInt64(key)) * time.Millisecond
}

func floats(key string) []float64 {
	switch v := viper.Get(key).(type) {
	case []float64:
		return v
	case []any:
		return lo.Map(v, func(x any, _ int) float64 { return cast.ToFloat64(x) })
	case string:
		// env vars arrive as "0.2 0.5 1"
		return lo.Map(strings.Fields(v), func(x string, _ int) float64 { return cast.ToFloat64(x) })
	default:
		return nil
	}
}

// Current reads the settings as they are right now.
func Current() Settings {
	return Settings{
		Sources:       viper.GetStringSlice(PlayerSources),
		AutoPlay:      viper.GetBool(PlayerAutoPlay),
		Looping:       viper.GetBool(PlayerLooping),
		HideDelay:     millis(PlayerHideDelay),
		PollInterval:  millis(PlayerPollInterval),
		ViewportW:     viper.GetInt(PlayerViewportWidth),
		ViewportH:     viper.GetInt(PlayerViewportHeight),
		FrameInterval: millis(PlayerVideoFrameMillis),

		CaptureDir:       viper.GetString(CaptureDir),
		CaptureFormat:    viper.GetString(CaptureFormat),
		CaptureQuality:   viper.GetInt(CaptureQuality),
		CaptureKeep:      viper.GetInt(CaptureKeep),
		CaptureSerialize: viper.GetBool(CaptureSerialize),

		AmbientEnabled:      viper.GetBool(AmbientEnabled),
		AmbientDelay:        millis(AmbientDelay),
		AmbientImageFade:    millis(AmbientImageFade),
		AmbientGradientFade: millis(AmbientGradientFade),
		AmbientCrossfade:    millis(AmbientCrossfade),
		AmbientBlur:         viper.GetFloat64(AmbientBlur),
		GradientColors:      viper.GetStringSlice(AmbientGradientColors),
		GradientAlphas:      floats(AmbientGradientAlphas),
		DefaultFrame:        viper.GetString(AmbientDefaultFrame),

		CrossfadeDuration: millis(CrossfadeDuration),
		CrossfadeReverse:  viper.GetBool(CrossfadeReverse),

		LogPath:  viper.GetString(LogsPath),
		LogLevel: viper.GetString(LogsLevel),
	}
}

// Validate reports settings the player cannot run with.
func (s Settings) Validate() error {
	var errs []error
	if len(s.Sources) == 0 {
		errs = append(errs, errors.New("no sources given"))
	}
	if s.FrameInterval < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative", PlayerVideoFrameMillis))
	}
	if s.CaptureQuality < 1 || s.CaptureQuality > 100 {
		errs = append(errs, fmt.Errorf("%s must be between 1 and 100", CaptureQuality))
	}
	if len(s.GradientColors) != len(s.GradientAlphas) {
		errs = append(errs, fmt.Errorf("%s and %s differ in length", AmbientGradientColors, AmbientGradientAlphas))
	}
	return errors.Join(errs...)
}

// Watch calls onChange with fresh settings whenever the config file is
// written. It does nothing when no file was loaded.
func Watch(onChange func(Settings)) {
	if viper.ConfigFileUsed() == "" {
		return
	}
	viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		onChange(Current())
	})
	viper.WatchConfig()
}

// Write renders the effective configuration as YAML.
func Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(viper.AllSettings()); err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	return enc.Close()
}
