package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// FileName is the optional config file looked up in the config directory.
const FileName = "modular"

type LogConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
}

type SimConfig struct {
	SubSteps int     `mapstructure:"substeps"`
	Dt       float64 `mapstructure:"dt"`
	Damping  float64 `mapstructure:"damping"`
}

type EditorConfig struct {
	SnapEpsilon   float64 `mapstructure:"snapEpsilon"`
	BreakDistance float64 `mapstructure:"breakDistance"`
	BreakAngle    float64 `mapstructure:"breakAngle"`
}

type SchemeConfig struct {
	File  string `mapstructure:"file"`
	Watch bool   `mapstructure:"watch"`
}

type HangarConfig struct {
	Path string `mapstructure:"path"`
}

type WeaponsConfig struct {
	BeamRange float64 `mapstructure:"beamRange"`
}

type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Sim     SimConfig     `mapstructure:"sim"`
	Editor  EditorConfig  `mapstructure:"editor"`
	Scheme  SchemeConfig  `mapstructure:"scheme"`
	Hangar  HangarConfig  `mapstructure:"hangar"`
	Weapons WeaponsConfig `mapstructure:"weapons"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.console", true)

	v.SetDefault("sim.substeps", 3)
	v.SetDefault("sim.dt", 1.0/60.0)
	v.SetDefault("sim.damping", 1.0)

	v.SetDefault("editor.snapEpsilon", 5.0)
	v.SetDefault("editor.breakDistance", 10.0)
	v.SetDefault("editor.breakAngle", 1.0)

	v.SetDefault("scheme.file", "ship.yaml")
	v.SetDefault("scheme.watch", true)

	v.SetDefault("hangar.path", "hangar.db")

	v.SetDefault("weapons.beamRange", 300.0)
}

// Load reads modular.yaml from configDir when present and layers MODULAR_*
// environment variables (MODULAR_SIM_SUBSTEPS) on top of the defaults. A
// missing file is not an error.
func Load(configDir string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.SetEnvPrefix("MODULAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: read %s: %w", configDir, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if cfg.Sim.SubSteps <= 0 {
		return Config{}, fmt.Errorf("config: sim.substeps must be positive, got %d", cfg.Sim.SubSteps)
	}
	return cfg, nil
}
