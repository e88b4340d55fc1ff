// Package alerts derives the bedside alert list shown alongside a risk
// estimate. Rules are evaluated against the raw record directly, independent
// of the model pipeline, so alerts stay meaningful even if the classifier is
// retrained.
package alerts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sepsiswatch/platform/pkg/clinical/features"
	"gopkg.in/yaml.v3"
)

// Rule triggers when the named raw field crosses either bound. Above and
// Below may both be set (abnormal-temperature style rules); AtLeast is an
// inclusive lower bound used for demographic rules.
type Rule struct {
	Name    string   `yaml:"name" json:"name"`
	Field   string   `yaml:"field" json:"field"`
	Above   *float64 `yaml:"above,omitempty" json:"above,omitempty"`
	Below   *float64 `yaml:"below,omitempty" json:"below,omitempty"`
	AtLeast *float64 `yaml:"at_least,omitempty" json:"at_least,omitempty"`
	Message string   `yaml:"message" json:"message"`
}

type RulesConfig struct {
	Rules []Rule `yaml:"rules" json:"rules"`
}

// LoadRules reads a YAML override file, falling back to the compiled-in rule
// set when no path is given.
func LoadRules(path string) (RulesConfig, error) {
	if path == "" {
		return DefaultRules(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return DefaultRules(), err
	}

	var cfg RulesConfig
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return RulesConfig{}, err
	}
	if len(cfg.Rules) == 0 {
		return RulesConfig{}, errors.New("no alert rules configured")
	}
	for _, rule := range cfg.Rules {
		if _, ok := (features.RawPatientRecord{}).Value(rule.Field); !ok {
			return RulesConfig{}, fmt.Errorf("alert rule %q references unknown field %q", rule.Name, rule.Field)
		}
	}
	return cfg, nil
}

// DefaultRules mirrors the thresholds the feature engine flags on, with the
// one demographic rule (age 65+) appended last.
func DefaultRules() RulesConfig {
	return RulesConfig{Rules: []Rule{
		{Name: "Tachycardia", Field: "HR", Above: f(100), Message: "Tachycardia detected (HR > 100)"},
		{Name: "Hypotension", Field: "SBP", Below: f(90), Message: "Hypotension detected (SBP < 90)"},
		{Name: "TemperatureAbnormal", Field: "Temp", Above: f(38), Below: f(36), Message: "Temperature abnormal"},
		{Name: "ElevatedLactate", Field: "Lactate", Above: f(2.0), Message: "Elevated lactate (> 2.0)"},
		{Name: "AbnormalWBC", Field: "WBC", Above: f(12), Below: f(4), Message: "Abnormal WBC count"},
		{Name: "LowOxygenSaturation", Field: "O2Sat", Below: f(92), Message: "Low oxygen saturation"},
		{Name: "Thrombocytopenia", Field: "Platelets", Below: f(150), Message: "Thrombocytopenia detected"},
		{Name: "ElevatedCreatinine", Field: "Creatinine", Above: f(1.2), Message: "Elevated creatinine"},
		{Name: "ElderlyPatient", Field: "Age", AtLeast: f(65), Message: "Elderly patient - increased sepsis risk"},
	}}
}

// Evaluate returns the messages of every triggered rule, in rule order.
func (c RulesConfig) Evaluate(raw features.RawPatientRecord) []string {
	var triggered []string
	for _, rule := range c.Rules {
		value, ok := raw.Value(rule.Field)
		if !ok {
			continue
		}
		if rule.matches(value) {
			triggered = append(triggered, rule.Message)
		}
	}
	return triggered
}

func (r Rule) matches(value float64) bool {
	if r.Above != nil && value > *r.Above {
		return true
	}
	if r.Below != nil && value < *r.Below {
		return true
	}
	if r.AtLeast != nil && value >= *r.AtLeast {
		return true
	}
	return false
}

func f(v float64) *float64 {
	return &v
}
