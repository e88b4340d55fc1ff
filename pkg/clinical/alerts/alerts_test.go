package alerts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sepsiswatch/platform/pkg/clinical/features"
)

func TestDefaultRulesOnSepticPatient(t *testing.T) {
	raw := features.RawPatientRecord{
		Age: 70, Gender: 1, HR: 115, O2Sat: 90, Temp: 39, SBP: 85, MAP: 62,
		DBP: 45, Resp: 24, WBC: 15, Platelets: 90, Creatinine: 1.6, Lactate: 3.2,
	}

	triggered := DefaultRules().Evaluate(raw)

	for _, want := range []string{
		"Tachycardia", "Hypotension", "Temperature abnormal", "Elevated lactate",
		"Abnormal WBC", "Low oxygen saturation", "Thrombocytopenia",
		"Elevated creatinine", "Elderly patient",
	} {
		if !containsSubstring(triggered, want) {
			t.Fatalf("expected alert containing %q, got %v", want, triggered)
		}
	}
}

func TestDefaultRulesOnNormalPatient(t *testing.T) {
	raw := features.RawPatientRecord{
		Age: 50, Gender: 1, HR: 80, O2Sat: 95, Temp: 37, SBP: 120, MAP: 80,
		DBP: 70, Resp: 16, WBC: 8, Platelets: 200, Creatinine: 1.0, Lactate: 1.5,
	}
	if triggered := DefaultRules().Evaluate(raw); len(triggered) != 0 {
		t.Fatalf("expected no alerts, got %v", triggered)
	}
}

func TestHypothermiaTriggersTemperatureRule(t *testing.T) {
	raw := features.RawPatientRecord{
		Age: 50, Gender: 1, HR: 80, O2Sat: 95, Temp: 35.5, SBP: 120, MAP: 80,
		DBP: 70, Resp: 16, WBC: 8, Platelets: 200, Creatinine: 1.0, Lactate: 1.5,
	}
	triggered := DefaultRules().Evaluate(raw)
	if !containsSubstring(triggered, "Temperature abnormal") {
		t.Fatalf("expected temperature alert for 35.5C, got %v", triggered)
	}
}

func TestLoadRulesFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `rules:
  - name: BradycardiaWatch
    field: HR
    below: 50
    message: Bradycardia detected
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write rules file: %v", err)
	}

	cfg, err := LoadRules(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Rules) != 1 || cfg.Rules[0].Name != "BradycardiaWatch" {
		t.Fatalf("unexpected rules: %+v", cfg.Rules)
	}

	raw := features.RawPatientRecord{HR: 45}
	if triggered := cfg.Evaluate(raw); len(triggered) != 1 || triggered[0] != "Bradycardia detected" {
		t.Fatalf("unexpected evaluation: %v", triggered)
	}
}

func TestLoadRulesRejectsUnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `rules:
  - name: Bogus
    field: NotAField
    above: 1
    message: nope
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write rules file: %v", err)
	}
	if _, err := LoadRules(path); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestLoadRulesFallsBackToDefaults(t *testing.T) {
	cfg, err := LoadRules("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Rules) != 9 {
		t.Fatalf("expected 9 default rules, got %d", len(cfg.Rules))
	}
}

func containsSubstring(list []string, substr string) bool {
	for _, s := range list {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}
