package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Viewer ViewerConfig
	Keys   KeysConfig
	Camera CameraConfig
	Store  StoreConfig
	Log    LogConfig
	Replay ReplayConfig
	Clouds []string
}

// ViewerConfig holds viewer settings.
type ViewerConfig struct {
	Background string
	HelpKey    string `mapstructure:"help_key"`
	Tick       time.Duration
	Show       []string
	Hide       []string
}

// KeysConfig names the keys used to answer prompts and drive selections.
type KeysConfig struct {
	Yes       string
	No        string
	Done      string
	NextLabel string `mapstructure:"next_label"`
	Cancel    string
}

// CameraConfig holds where camera parameters are saved.
type CameraConfig struct {
	Path string
}

// StoreConfig holds sqlite settings.
type StoreConfig struct {
	Path string
}

// LogConfig holds logger settings. With no file, logs are discarded unless
// Stderr is set.
type LogConfig struct {
	Level      string
	File       string
	MaxSize    int `mapstructure:"max_size"`
	MaxBackups int `mapstructure:"max_backups"`
	MaxAge     int `mapstructure:"max_age"`
	Compress   bool
	Stderr     bool
}

// ReplayConfig selects a scripted session instead of the terminal window.
type ReplayConfig struct {
	Script string
	Pace   bool
}

// CloudSpec is a point cloud file to load, given as name=path.
type CloudSpec struct {
	Name string
	Path string
}

func configDir() string {
	return filepath.Join(os.Getenv("HOME"), ".config", "tviewer")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("viewer.background", "#1e1e2e")
	v.SetDefault("viewer.help_key", "h")
	v.SetDefault("viewer.tick", 30*time.Millisecond)
	v.SetDefault("viewer.show", []string{})
	v.SetDefault("viewer.hide", []string{})
	v.SetDefault("keys.yes", "y")
	v.SetDefault("keys.no", "n")
	v.SetDefault("keys.done", "enter")
	v.SetDefault("keys.next_label", "space")
	v.SetDefault("keys.cancel", "esc")
	v.SetDefault("camera.path", filepath.Join(configDir(), "camera.toml"))
	v.SetDefault("store.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "tviewer", "selections.db"))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 28)
	v.SetDefault("log.compress", false)
	v.SetDefault("log.stderr", false)
	v.SetDefault("replay.script", "")
	v.SetDefault("replay.pace", false)
	v.SetDefault("clouds", []string{})
}

// Flags returns the command-line flags Load understands.
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("tviewer", pflag.ContinueOnError)
	fs.String("config", "", "config file (default $HOME/.config/tviewer/config.toml)")
	fs.String("background", "", "window background color as #rrggbb")
	fs.Duration("tick", 0, "event loop tick")
	fs.StringSlice("show", nil, "objects that are always visible")
	fs.StringSlice("hide", nil, "objects that are never visible")
	fs.String("camera", "", "camera parameter file")
	fs.String("store", "", "selection database")
	fs.String("log-level", "", "log level: debug, info, warn or error")
	fs.String("log-file", "", "log file, rotated")
	fs.Bool("log-stderr", false, "log to stderr")
	fs.String("replay", "", "replay a TOML script instead of opening a window")
	fs.Bool("pace", false, "replay at interactive speed")
	fs.StringArray("cloud", nil, "load a point cloud file as name=path (repeatable)")
	return fs
}

var flagKeys = map[string]string{
	"background": "viewer.background",
	"tick":       "viewer.tick",
	"show":       "viewer.show",
	"hide":       "viewer.hide",
	"camera":     "camera.path",
	"store":      "store.path",
	"log-level":  "log.level",
	"log-file":   "log.file",
	"log-stderr": "log.stderr",
	"replay":     "replay.script",
	"pace":       "replay.pace",
	"cloud":      "clouds",
}

// Load reads configuration from defaults, the config file, env and args, in
// increasing priority. Env var overrides use prefix TVIEWER_.
func Load(args []string) (Config, error) {
	fs := Flags()
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	v := viper.New()
	setDefaults(v)
	for name, key := range flagKeys {
		if f := fs.Lookup(name); f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	v.SetConfigType("toml")
	cfgPath, _ := fs.GetString("config")
	if cfgPath == "" {
		cfgPath = os.Getenv("TVIEWER_CONFIG")
	}
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(configDir())
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("TVIEWER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgPath != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if _, err := ParseColor(c.Viewer.Background); err != nil {
		return Config{}, fmt.Errorf("viewer.background: %w", err)
	}
	if _, err := c.CloudSpecs(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// CloudSpecs parses the configured name=path cloud entries.
func (c Config) CloudSpecs() ([]CloudSpec, error) {
	out := make([]CloudSpec, 0, len(c.Clouds))
	for _, s := range c.Clouds {
		name, path, ok := strings.Cut(s, "=")
		name, path = strings.TrimSpace(name), strings.TrimSpace(path)
		if !ok || name == "" || path == "" {
			return nil, fmt.Errorf("cloud %q: want name=path", s)
		}
		out = append(out, CloudSpec{Name: name, Path: path})
	}
	return out, nil
}

// ParseColor parses a #rrggbb or #rgb color.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}
