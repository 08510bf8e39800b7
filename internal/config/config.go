// Package config loads odelab settings and model-catalog extensions
// from YAML. Custom catalog entries parameterize the built-in equation
// families; they cannot define arbitrary right-hand sides.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/odelab/internal/models"
	"github.com/san-kum/odelab/internal/runner"
)

const (
	DefaultMethod   = "rk4"
	DefaultNorm     = "max"
	DefaultH        = 0.1
	DefaultAtol     = 1e-8
	DefaultRtol     = 1e-8
	DefaultHalvings = 4
)

type Config struct {
	Method   string        `yaml:"method"`
	Norm     string        `yaml:"norm"`
	Workers  int           `yaml:"workers"`
	Step     StepConfig    `yaml:"step"`
	Halvings int           `yaml:"halvings"`
	Models   []ModelConfig `yaml:"models"`
}

type StepConfig struct {
	H    float64 `yaml:"h"`
	Atol float64 `yaml:"atol"`
	Rtol float64 `yaml:"rtol"`
	HMin float64 `yaml:"h_min"`
	HMax float64 `yaml:"h_max"`
}

// ModelConfig declares a catalog variant of a built-in equation family.
type ModelConfig struct {
	ID     string             `yaml:"id"`
	Name   string             `yaml:"name"`
	Kind   string             `yaml:"kind"`
	Params map[string]float64 `yaml:"params"`
	TEnd   float64            `yaml:"t_end"`
}

func DefaultConfig() *Config {
	return &Config{
		Method:   DefaultMethod,
		Norm:     DefaultNorm,
		Halvings: DefaultHalvings,
		Step: StepConfig{
			H:    DefaultH,
			Atol: DefaultAtol,
			Rtol: DefaultRtol,
		},
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

// FixedPolicy returns the configured fixed-step policy.
func (c *Config) FixedPolicy() runner.StepPolicy {
	h := c.Step.H
	if h == 0 {
		h = DefaultH
	}
	return runner.FixedStep(h)
}

// AdaptivePolicy returns the configured adaptive policy.
func (c *Config) AdaptivePolicy() runner.StepPolicy {
	atol, rtol := c.Step.Atol, c.Step.Rtol
	if atol == 0 {
		atol = DefaultAtol
	}
	if rtol == 0 {
		rtol = DefaultRtol
	}
	p := runner.AdaptiveStep(atol, rtol)
	if c.Step.HMin > 0 {
		p.HMin = c.Step.HMin
	}
	if c.Step.HMax > 0 {
		p.HMax = c.Step.HMax
	}
	return p
}

// BuildRegistry assembles the model registry: the built-in catalog
// plus every configured variant.
func (c *Config) BuildRegistry() (*models.Registry, error) {
	reg := models.DefaultRegistry()
	for _, mc := range c.Models {
		m, err := mc.build()
		if err != nil {
			return nil, err
		}
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func (mc ModelConfig) build() (*models.Model, error) {
	p := func(name string, def float64) float64 {
		if v, ok := mc.Params[name]; ok {
			return v
		}
		return def
	}

	var m *models.Model
	switch mc.Kind {
	case "logistic":
		m = models.Logistic(p("r", models.DefaultLogisticRate), p("K", models.DefaultLogisticCapacity))
	case "exp_growth":
		m = models.ExpGrowth(p("lambda", models.DefaultGrowthLambda))
	case "damped_oscillator":
		m = models.DampedOscillator(p("omega", models.DefaultOscFreq), p("zeta", models.DefaultOscDamping))
	case "sir":
		m = models.SIR(p("beta", models.DefaultSIRBeta), p("gamma", models.DefaultSIRGamma))
	case "vanderpol":
		m = models.VanDerPol(p("mu", models.DefaultVanDerPolMu))
	default:
		return nil, fmt.Errorf("unknown model kind: %q", mc.Kind)
	}

	if mc.ID == "" {
		return nil, fmt.Errorf("model entry of kind %q needs an id", mc.Kind)
	}
	m.ID = mc.ID
	if mc.Name != "" {
		m.Name = mc.Name
	}
	if mc.TEnd != 0 {
		m.TEnd = mc.TEnd
	}
	return m, nil
}
