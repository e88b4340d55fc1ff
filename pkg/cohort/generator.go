// Package cohort produces the synthetic bootstrap dataset used to fit the
// scaler and classifier when no real labelled data is supplied. It is not a
// clinical simulator: rows are draws from two coarse latent profiles, good
// enough to exercise the pipeline end to end and nothing more.
package cohort

import (
	"math"
	"math/rand"

	"github.com/sepsiswatch/platform/pkg/clinical/features"
)

// Row is one labelled synthetic patient.
type Row struct {
	PatientID   int
	Raw         features.RawPatientRecord
	SepsisLabel int
}

// Cohort is an ordered labelled dataset, rows ascending by PatientID.
type Cohort []Row

// Physiologic clamp bounds. Every sampled vital is forced into its range
// regardless of the draw; DBP is derived from SBP rather than sampled.
var clampBounds = map[string][2]float64{
	"Age":        {18, 95},
	"HR":         {40, 180},
	"O2Sat":      {70, 100},
	"Temp":       {34, 42},
	"SBP":        {60, 200},
	"MAP":        {40, 140},
	"DBP":        {30, 120},
	"Resp":       {8, 40},
	"WBC":        {1, 30},
	"Platelets":  {20, 500},
	"Creatinine": {0.3, 8},
	"Lactate":    {0.5, 10},
}

// ClampBounds returns the documented physiologic range for a raw field.
func ClampBounds(field string) (min, max float64, ok bool) {
	b, ok := clampBounds[field]
	return b[0], b[1], ok
}

type Generator struct {
	profiles Profiles
}

func NewGenerator(profiles Profiles) *Generator {
	return &Generator{profiles: profiles}
}

// Generate draws n labelled patients. The same (n, seed) pair always yields
// a byte-identical cohort; regression tests and reproducible training runs
// depend on it.
func (g *Generator) Generate(n int, seed int64) Cohort {
	rng := rand.New(rand.NewSource(seed))
	rows := make(Cohort, 0, n)
	for id := 1; id <= n; id++ {
		rows = append(rows, g.sample(id, rng))
	}
	return rows
}

// sample draws one patient. The draw order is fixed: latent label, age,
// gender, then the vitals in profile order. Changing it silently changes
// every seeded cohort.
func (g *Generator) sample(id int, rng *rand.Rand) Row {
	septic := rng.Float64() < g.profiles.SepsisPrevalence
	profile := g.profiles.Healthy
	if septic {
		profile = g.profiles.Septic
	}

	age := clamp("Age", math.Trunc(normal(rng, profile.Age)))

	gender := 0.0
	if rng.Float64() < profile.MaleProb {
		gender = 1.0
	}

	hr := normal(rng, profile.HR)
	temp := normal(rng, profile.Temp)
	resp := normal(rng, profile.Resp)
	sbp := normal(rng, profile.SBP)
	mapVal := normal(rng, profile.MAP)
	wbc := normal(rng, profile.WBC)
	lactate := normal(rng, profile.Lactate)
	platelets := normal(rng, profile.Platelets)
	creatinine := normal(rng, profile.Creatinine)
	o2sat := normal(rng, profile.O2Sat)

	raw := features.RawPatientRecord{
		Age:        age,
		Gender:     gender,
		HR:         clamp("HR", hr),
		O2Sat:      clamp("O2Sat", o2sat),
		Temp:       clamp("Temp", temp),
		SBP:        clamp("SBP", sbp),
		MAP:        clamp("MAP", mapVal),
		DBP:        clamp("DBP", sbp-40),
		Resp:       clamp("Resp", resp),
		WBC:        clamp("WBC", wbc),
		Platelets:  clamp("Platelets", platelets),
		Creatinine: clamp("Creatinine", creatinine),
		Lactate:    clamp("Lactate", lactate),
	}

	label := 0
	if septic {
		label = 1
	}
	return Row{PatientID: id, Raw: raw, SepsisLabel: label}
}

func normal(rng *rand.Rand, d Dist) float64 {
	return rng.NormFloat64()*d.SD + d.Mean
}

func clamp(field string, v float64) float64 {
	b := clampBounds[field]
	return math.Max(b[0], math.Min(b[1], v))
}
