package config

var Presets = map[string]map[string]*Config{
	"sine-decay": {
		"quick": {
			Model: "sine-decay", Solver: "rk4", T1: 1.0, GridPoints: 50,
			InitState: []float64{0},
		},
		"fine": {
			Model: "sine-decay", Solver: "rk4", T1: 1.0, GridPoints: 400,
			InitState: []float64{0},
		},
		"euler-demo": {
			Model: "sine-decay", Solver: "euler", T1: 1.0, GridPoints: 1000,
			InitState: []float64{0},
		},
	},
	"double-sine-decay": {
		"quick": {
			Model: "double-sine-decay", Solver: "rk4", T1: 1.0, GridPoints: 100,
			InitState: []float64{0, 0},
		},
	},
	"coswave": {
		"seminar": {
			Model: "coswave", Solver: "rk4", T1: 1.0, GridPoints: 40,
			InitState: []float64{1},
		},
	},
	"coswave-grad": {
		"seminar": {
			Model: "coswave-grad", Solver: "rk4", T1: 1.0, GridPoints: 40,
			InitState: []float64{1},
		},
	},
	"dense": {
		"seminar": {
			Model: "dense", Solver: "rk4", T1: 1.0, GridPoints: 20, Seed: 42,
		},
		"compiled": {
			Model: "dense", Solver: "rk4", T1: 1.0, GridPoints: 20, Seed: 42, Compile: true,
		},
	},
	"gradpath": {
		"seminar": {
			Model: "gradpath", Solver: "rk4", T1: 1.0, GridPoints: 20, Seed: 42,
		},
	},
	"linear": {
		"fit": {
			Model: "linear", Solver: "rk4", T1: 1.0, GridPoints: 20, Seed: 11,
			Train: TrainConfig{Optimizer: "adam", LearningRate: 0.05, Epochs: 200},
		},
	},
}

func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	return names
}
