package features

import (
	"testing"

	"github.com/sepsiswatch/platform/pkg/common/models"
)

func f(v float64) *float64 { return &v }

func TestNewRawPatientRecordAppliesDefaults(t *testing.T) {
	rec, err := NewRawPatientRecord(models.PredictionRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := RawPatientRecord{
		Age: DefaultAge, Gender: DefaultGender, HR: DefaultHR, O2Sat: DefaultO2Sat,
		Temp: DefaultTemp, SBP: DefaultSBP, MAP: DefaultMAP, DBP: DefaultDBP,
		Resp: DefaultResp, WBC: DefaultWBC, Platelets: DefaultPlatelets,
		Creatinine: DefaultCreatinine, Lactate: DefaultLactate,
	}
	if rec != want {
		t.Fatalf("defaulted record = %+v, want %+v", rec, want)
	}
}

func TestNewRawPatientRecordKeepsProvidedValues(t *testing.T) {
	rec, err := NewRawPatientRecord(models.PredictionRequest{
		Age: f(70), HR: f(115), Lactate: f(3.2),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Age != 70 || rec.HR != 115 || rec.Lactate != 3.2 {
		t.Fatalf("provided values not kept: %+v", rec)
	}
	if rec.Temp != DefaultTemp {
		t.Fatalf("Temp = %v, want default %v", rec.Temp, float64(DefaultTemp))
	}
}

func TestNewRawPatientRecordRejectsOutOfRange(t *testing.T) {
	cases := []struct {
		name string
		req  models.PredictionRequest
	}{
		{"negative age", models.PredictionRequest{Age: f(-1)}},
		{"impossible age", models.PredictionRequest{Age: f(150)}},
		{"zero heart rate", models.PredictionRequest{HR: f(0)}},
		{"o2sat above 100", models.PredictionRequest{O2Sat: f(120)}},
		{"fractional gender", models.PredictionRequest{Gender: f(0.5)}},
		{"freezing temp", models.PredictionRequest{Temp: f(10)}},
	}
	for _, tc := range cases {
		_, err := NewRawPatientRecord(tc.req)
		if err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
		if !IsValidationError(err) {
			t.Fatalf("%s: error %v is not a ValidationError", tc.name, err)
		}
	}
}

func TestBaseFeatureNamesOrderIsFixed(t *testing.T) {
	names := BaseFeatureNames()
	want := []string{"Age", "Gender", "HR", "O2Sat", "Temp", "SBP", "MAP", "DBP", "Resp", "WBC", "Platelets", "Creatinine", "Lactate"}
	if len(names) != len(want) {
		t.Fatalf("expected %d base features, got %d", len(want), len(names))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("position %d: got %q, want %q", i, names[i], want[i])
		}
	}
}

func TestValueResolvesEveryBaseName(t *testing.T) {
	rec := RawPatientRecord{Age: 1, Gender: 1, HR: 2, O2Sat: 3, Temp: 4, SBP: 5, MAP: 6, DBP: 7, Resp: 8, WBC: 9, Platelets: 10, Creatinine: 11, Lactate: 12}
	for _, name := range BaseFeatureNames() {
		if _, ok := rec.Value(name); !ok {
			t.Fatalf("Value(%q) not resolvable", name)
		}
	}
	if _, ok := rec.Value("nonexistent"); ok {
		t.Fatal("Value resolved an unknown name")
	}
}
