package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultMu             = 27e9
	DefaultNu             = 0.33
	DefaultDrag           = 1e-4
	DefaultMinDistance    = 2.5e-9
	DefaultReactionRadius = 1e-9
	DefaultMaxDt          = 1e-6
	DefaultIterations     = 1000
)

type Config struct {
	Mu             float64      `yaml:"mu"`
	Nu             float64      `yaml:"nu"`
	Drag           float64      `yaml:"drag"`
	TauCRSS        float64      `yaml:"tau_crss"`
	MinDistance    float64      `yaml:"min_distance"`
	ReactionRadius float64      `yaml:"reaction_radius"`
	MaxDt          float64      `yaml:"max_dt"`
	Iterations     int          `yaml:"iterations"`
	SnapshotStride int          `yaml:"snapshot_stride"`
	AppliedStress  StressConfig `yaml:"applied_stress"`
	Files          FilesConfig  `yaml:"files"`
}

// StressConfig holds the six independent components of the applied stress.
type StressConfig struct {
	XX float64 `yaml:"xx"`
	YY float64 `yaml:"yy"`
	ZZ float64 `yaml:"zz"`
	XY float64 `yaml:"xy"`
	YZ float64 `yaml:"yz"`
	ZX float64 `yaml:"zx"`
}

type FilesConfig struct {
	Structure    string `yaml:"structure"`
	Orientations string `yaml:"orientations"`
	Tessellation string `yaml:"tessellation"`
}

func DefaultConfig() *Config {
	return &Config{
		Mu:             DefaultMu,
		Nu:             DefaultNu,
		Drag:           DefaultDrag,
		TauCRSS:        0,
		MinDistance:    DefaultMinDistance,
		ReactionRadius: DefaultReactionRadius,
		MaxDt:          DefaultMaxDt,
		Iterations:     DefaultIterations,
		SnapshotStride: 1,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
