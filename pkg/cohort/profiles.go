package cohort

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Dist is a univariate normal the generator samples from.
type Dist struct {
	Mean float64 `yaml:"mean" json:"mean"`
	SD   float64 `yaml:"sd" json:"sd"`
}

// Profile holds the sampling distributions for one latent class.
type Profile struct {
	Age        Dist    `yaml:"age" json:"age"`
	MaleProb   float64 `yaml:"male_prob" json:"male_prob"`
	HR         Dist    `yaml:"hr" json:"hr"`
	Temp       Dist    `yaml:"temp" json:"temp"`
	Resp       Dist    `yaml:"resp" json:"resp"`
	SBP        Dist    `yaml:"sbp" json:"sbp"`
	MAP        Dist    `yaml:"map" json:"map"`
	WBC        Dist    `yaml:"wbc" json:"wbc"`
	Lactate    Dist    `yaml:"lactate" json:"lactate"`
	Platelets  Dist    `yaml:"platelets" json:"platelets"`
	Creatinine Dist    `yaml:"creatinine" json:"creatinine"`
	O2Sat      Dist    `yaml:"o2sat" json:"o2sat"`
}

// Profiles is the full generator configuration: sepsis prevalence plus the
// two latent clinical profiles.
type Profiles struct {
	SepsisPrevalence float64 `yaml:"sepsis_prevalence" json:"sepsis_prevalence"`
	Septic           Profile `yaml:"septic" json:"septic"`
	Healthy          Profile `yaml:"healthy" json:"healthy"`
}

// LoadProfiles reads a YAML override, falling back to the compiled-in
// defaults when no path is given.
func LoadProfiles(path string) (Profiles, error) {
	if path == "" {
		return DefaultProfiles(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return DefaultProfiles(), err
	}
	var p Profiles
	if err := yaml.Unmarshal(content, &p); err != nil {
		return Profiles{}, err
	}
	if p.SepsisPrevalence <= 0 || p.SepsisPrevalence >= 1 {
		return Profiles{}, errors.New("sepsis_prevalence must be in (0, 1)")
	}
	return p, nil
}

// DefaultProfiles encodes the bootstrap cohort assumptions: septic patients
// skew elderly, tachycardic, febrile, tachypneic, hypotensive, leukocytotic,
// hyperlactatemic, thrombocytopenic, with elevated creatinine and hypoxemia.
func DefaultProfiles() Profiles {
	return Profiles{
		SepsisPrevalence: 0.35,
		Septic: Profile{
			Age:        Dist{68, 15},
			MaleProb:   0.55,
			HR:         Dist{110, 20},
			Temp:       Dist{38.5, 1.5},
			Resp:       Dist{24, 5},
			SBP:        Dist{92, 15},
			MAP:        Dist{65, 10},
			WBC:        Dist{14, 4},
			Lactate:    Dist{3.5, 1.5},
			Platelets:  Dist{120, 40},
			Creatinine: Dist{1.8, 0.8},
			O2Sat:      Dist{92, 4},
		},
		Healthy: Profile{
			Age:        Dist{55, 18},
			MaleProb:   0.48,
			HR:         Dist{80, 15},
			Temp:       Dist{37, 0.8},
			Resp:       Dist{16, 3},
			SBP:        Dist{120, 15},
			MAP:        Dist{80, 10},
			WBC:        Dist{8, 2},
			Lactate:    Dist{1.2, 0.5},
			Platelets:  Dist{220, 60},
			Creatinine: Dist{0.9, 0.3},
			O2Sat:      Dist{97, 2},
		},
	}
}
