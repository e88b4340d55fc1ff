package features

// ExtendedFeatureRecord is a RawPatientRecord plus the 28 engineered clinical
// indicators. Every derived field is a pure function of the raw fields; the
// record is one-to-one with its source and never persisted on its own.
type ExtendedFeatureRecord struct {
	Raw RawPatientRecord

	// Demographic flags
	AgeHighRisk     float64
	AgeVeryHighRisk float64
	AgePediatric    float64
	GenderMale      float64
	ElderlyMale     float64

	// SOFA-inspired organ sub-scores, each in {0,1,2}
	RespScore   int
	CardioScore int
	CoagScore   int
	RenalScore  int
	SOFAApprox  int

	// Binary alert flags
	HighHRFlag      float64
	VeryHighHRFlag  float64
	LowSBPFlag      float64
	VeryLowSBPFlag  float64
	FeverFlag       float64
	HypothermiaFlag float64
	HighRespFlag    float64
	HighWBCFlag     float64
	LowWBCFlag      float64

	// Composite clinical scores
	QSOFAApprox int // two of the three qSOFA criteria; mental status is not captured
	SIRSCount   int

	// Risk intensity scores (weighted sums, not probabilities)
	CardioRisk    float64
	RespRisk      float64
	MetabolicRisk float64

	// Organ dysfunction indicators
	MultiOrganRisk float64
	SevereRisk     float64

	// Age-adjusted composites
	AgeAdjustedSOFA float64
	AgeAdjustedSIRS float64
}

// Extend derives the engineered indicators from a raw record. Deterministic,
// no I/O, no failure modes: constructed records always have every field.
func Extend(raw RawPatientRecord) ExtendedFeatureRecord {
	ext := ExtendedFeatureRecord{Raw: raw}

	age := raw.Age
	ext.AgeHighRisk = boolFlag(age >= 65)
	ext.AgeVeryHighRisk = boolFlag(age >= 75)
	ext.AgePediatric = boolFlag(age < 18)
	ext.GenderMale = raw.Gender
	ext.ElderlyMale = boolFlag(age >= 65 && raw.Gender == 1)

	ext.RespScore = gradeDescending(raw.O2Sat, 88, 92)
	ext.CardioScore = gradeDescending(raw.MAP, 60, 70)
	ext.CoagScore = gradeDescending(raw.Platelets, 100, 150)

	// Renal threshold is relaxed for elderly patients.
	creatThreshold := 1.2
	if age >= 65 {
		creatThreshold = 1.4
	}
	switch {
	case raw.Creatinine > 2.0:
		ext.RenalScore = 2
	case raw.Creatinine > creatThreshold:
		ext.RenalScore = 1
	}

	ext.SOFAApprox = ext.RespScore + ext.CardioScore + ext.CoagScore + ext.RenalScore

	ext.HighHRFlag = boolFlag(raw.HR > 100)
	ext.VeryHighHRFlag = boolFlag(raw.HR > 120)
	ext.LowSBPFlag = boolFlag(raw.SBP < 90)
	ext.VeryLowSBPFlag = boolFlag(raw.SBP < 80)
	ext.FeverFlag = boolFlag(raw.Temp > 38)
	ext.HypothermiaFlag = boolFlag(raw.Temp < 36)
	ext.HighRespFlag = boolFlag(raw.Resp > 22)
	ext.HighWBCFlag = boolFlag(raw.WBC > 12)
	ext.LowWBCFlag = boolFlag(raw.WBC < 4)

	if raw.Resp >= 22 {
		ext.QSOFAApprox++
	}
	if raw.SBP <= 100 {
		ext.QSOFAApprox++
	}

	if raw.HR > 90 {
		ext.SIRSCount++
	}
	if raw.Resp > 20 {
		ext.SIRSCount++
	}
	if raw.Temp < 36 || raw.Temp > 38 {
		ext.SIRSCount++
	}
	if raw.WBC < 4 || raw.WBC > 12 {
		ext.SIRSCount++
	}

	ext.CardioRisk = 2*boolFlag(raw.SBP < 90) + 2*boolFlag(raw.MAP < 65) + boolFlag(raw.HR > 110)
	ext.RespRisk = 3*boolFlag(raw.O2Sat < 90) + boolFlag(raw.Resp > 25)
	ext.MetabolicRisk = 2 * boolFlag(raw.Lactate > 2.0)

	ext.MultiOrganRisk = boolFlag(ext.SOFAApprox >= 2)
	ext.SevereRisk = boolFlag(ext.SIRSCount >= 3)

	// The factors compound: patients 75 and over carry 1.2*1.3 = 1.56.
	ageFactor := 1.0
	if age >= 65 {
		ageFactor = 1.2
	}
	if age >= 75 {
		ageFactor *= 1.3
	}
	ext.AgeAdjustedSOFA = float64(ext.SOFAApprox) * ageFactor
	ext.AgeAdjustedSIRS = float64(ext.SIRSCount) * ageFactor

	return ext
}

// gradeDescending scores a measurement where lower is worse: 2 below the
// severe cutoff, 1 below the moderate cutoff, 0 otherwise.
func gradeDescending(value, severe, moderate float64) int {
	switch {
	case value < severe:
		return 2
	case value < moderate:
		return 1
	default:
		return 0
	}
}

func boolFlag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// EngineeredValue resolves an engineered field by schema name.
func (e ExtendedFeatureRecord) EngineeredValue(name string) (float64, bool) {
	switch name {
	case "age_high_risk":
		return e.AgeHighRisk, true
	case "age_very_high_risk":
		return e.AgeVeryHighRisk, true
	case "age_pediatric":
		return e.AgePediatric, true
	case "gender_male":
		return e.GenderMale, true
	case "elderly_male":
		return e.ElderlyMale, true
	case "resp_score":
		return float64(e.RespScore), true
	case "cardio_score":
		return float64(e.CardioScore), true
	case "coag_score":
		return float64(e.CoagScore), true
	case "renal_score":
		return float64(e.RenalScore), true
	case "SOFA_approx":
		return float64(e.SOFAApprox), true
	case "high_HR_flag":
		return e.HighHRFlag, true
	case "very_high_HR_flag":
		return e.VeryHighHRFlag, true
	case "low_SBP_flag":
		return e.LowSBPFlag, true
	case "very_low_SBP_flag":
		return e.VeryLowSBPFlag, true
	case "fever_flag":
		return e.FeverFlag, true
	case "hypothermia_flag":
		return e.HypothermiaFlag, true
	case "high_resp_flag":
		return e.HighRespFlag, true
	case "high_WBC_flag":
		return e.HighWBCFlag, true
	case "low_WBC_flag":
		return e.LowWBCFlag, true
	case "qSOFA_approx":
		return float64(e.QSOFAApprox), true
	case "SIRS_count":
		return float64(e.SIRSCount), true
	case "cardio_risk":
		return e.CardioRisk, true
	case "resp_risk":
		return e.RespRisk, true
	case "metabolic_risk":
		return e.MetabolicRisk, true
	case "multi_organ_risk":
		return e.MultiOrganRisk, true
	case "severe_risk":
		return e.SevereRisk, true
	case "age_adjusted_sofa":
		return e.AgeAdjustedSOFA, true
	case "age_adjusted_sirs":
		return e.AgeAdjustedSIRS, true
	default:
		return 0, false
	}
}

// Value resolves any schema name, base or engineered.
func (e ExtendedFeatureRecord) Value(name string) (float64, bool) {
	if v, ok := e.Raw.Value(name); ok {
		return v, true
	}
	return e.EngineeredValue(name)
}
