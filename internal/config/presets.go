package config

import "fmt"

// Presets name a few ready-made parameter sets covering common
// aluminium-like and copper-like runs plus a fast smoke-test profile.
var Presets = map[string]*Config{
	"aluminum": {
		Mu:             26e9,
		Nu:             0.345,
		Drag:           1e-4,
		TauCRSS:        0,
		MinDistance:    2.86e-9,
		ReactionRadius: 1.2e-9,
		MaxDt:          1e-6,
		Iterations:     5000,
		SnapshotStride: 10,
	},
	"copper": {
		Mu:             48e9,
		Nu:             0.34,
		Drag:           2e-5,
		TauCRSS:        1e6,
		MinDistance:    2.56e-9,
		ReactionRadius: 1e-9,
		MaxDt:          5e-7,
		Iterations:     5000,
		SnapshotStride: 10,
	},
	"quick": {
		Mu:             DefaultMu,
		Nu:             DefaultNu,
		Drag:           DefaultDrag,
		TauCRSS:        0,
		MinDistance:    DefaultMinDistance,
		ReactionRadius: DefaultReactionRadius,
		MaxDt:          DefaultMaxDt,
		Iterations:     100,
		SnapshotStride: 1,
	},
}

func GetPreset(name string) (*Config, error) {
	cfg, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("config: unknown preset %q", name)
	}
	c := *cfg
	return &c, nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
