package cohort

import (
	"reflect"
	"testing"
)

func TestGenerateIsReproducible(t *testing.T) {
	gen := NewGenerator(DefaultProfiles())
	first := gen.Generate(2000, 42)
	second := gen.Generate(2000, 42)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("same (n, seed) produced different cohorts")
	}
}

func TestGenerateDifferentSeedsDiffer(t *testing.T) {
	gen := NewGenerator(DefaultProfiles())
	first := gen.Generate(100, 1)
	second := gen.Generate(100, 2)
	if reflect.DeepEqual(first, second) {
		t.Fatal("different seeds produced identical cohorts")
	}
}

func TestGenerateRespectsClampBounds(t *testing.T) {
	rows := NewGenerator(DefaultProfiles()).Generate(2000, 7)

	for _, row := range rows {
		for field, value := range row.Raw.AsMap() {
			min, max, ok := ClampBounds(field)
			if !ok {
				if field == "Gender" {
					continue
				}
				t.Fatalf("no clamp bounds declared for %s", field)
			}
			if value < min || value > max {
				t.Fatalf("patient %d: %s = %v outside [%v, %v]", row.PatientID, field, value, min, max)
			}
		}
		if row.Raw.Gender != 0 && row.Raw.Gender != 1 {
			t.Fatalf("patient %d: Gender = %v", row.PatientID, row.Raw.Gender)
		}
		if row.SepsisLabel != 0 && row.SepsisLabel != 1 {
			t.Fatalf("patient %d: SepsisLabel = %d", row.PatientID, row.SepsisLabel)
		}
	}
}

func TestGenerateDerivesDBPFromSBP(t *testing.T) {
	rows := NewGenerator(DefaultProfiles()).Generate(500, 11)
	for _, row := range rows {
		want := row.Raw.SBP - 40
		if want < 30 {
			want = 30
		}
		if want > 120 {
			want = 120
		}
		if row.Raw.DBP != want {
			t.Fatalf("patient %d: DBP = %v, want %v (SBP %v)", row.PatientID, row.Raw.DBP, want, row.Raw.SBP)
		}
	}
}

func TestGeneratePatientIDsAscend(t *testing.T) {
	rows := NewGenerator(DefaultProfiles()).Generate(50, 3)
	if len(rows) != 50 {
		t.Fatalf("expected 50 rows, got %d", len(rows))
	}
	for i, row := range rows {
		if row.PatientID != i+1 {
			t.Fatalf("row %d has PatientID %d", i, row.PatientID)
		}
	}
}

func TestGenerateMixesBothClasses(t *testing.T) {
	rows := NewGenerator(DefaultProfiles()).Generate(2000, 42)
	var septic int
	for _, row := range rows {
		septic += row.SepsisLabel
	}
	if septic == 0 || septic == len(rows) {
		t.Fatalf("degenerate cohort: %d septic of %d", septic, len(rows))
	}
	// The 0.35 prevalence should land well inside this band at n=2000.
	frac := float64(septic) / float64(len(rows))
	if frac < 0.25 || frac > 0.45 {
		t.Fatalf("sepsis prevalence %.3f far from configured 0.35", frac)
	}
}

func TestAgesAreWholeYears(t *testing.T) {
	rows := NewGenerator(DefaultProfiles()).Generate(200, 5)
	for _, row := range rows {
		if row.Raw.Age != float64(int(row.Raw.Age)) {
			t.Fatalf("patient %d: fractional age %v", row.PatientID, row.Raw.Age)
		}
		if row.Raw.Age < 18 || row.Raw.Age > 95 {
			t.Fatalf("patient %d: age %v outside [18, 95]", row.PatientID, row.Raw.Age)
		}
	}
}
