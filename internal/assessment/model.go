package assessment

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"wellness-agent/internal/recommend"
)

// Phase is a state of the assessment conversation.
type Phase string

const (
	PhaseGreeting                  Phase = "greeting"
	PhaseContraindicationCheck     Phase = "contraindication_check"
	PhaseContraindicationClearance Phase = "contraindication_clearance"
	PhasePrimaryConcern            Phase = "primary_concern"
	PhaseSeverity                  Phase = "severity"
	PhaseDuration                  Phase = "duration_collection"
	PhaseRelatedSymptomsPrompt     Phase = "related_symptoms_prompt"
	PhaseCollectRelatedSymptoms    Phase = "collect_related_symptoms"
	PhaseLifestyleSleep            Phase = "lifestyle_sleep"
	PhaseLifestyleStress           Phase = "lifestyle_stress"
	PhaseLifestyleDigestive        Phase = "lifestyle_digestive"
	PhaseLifestyleEnergy           Phase = "lifestyle_energy"
	PhaseMedicalHistoryPrompt      Phase = "medical_history_prompt"
	PhaseCollectMedicalHistory     Phase = "collect_medical_history"
	PhaseReportGeneration          Phase = "report_generation"
	PhaseReportComplete            Phase = "report_complete"
	PhaseTerminated                Phase = "terminated"
)

// transitions is the directed phase graph. Restart is not an edge: it
// replaces the session.
var transitions = map[Phase][]Phase{
	PhaseGreeting:                  {PhaseContraindicationCheck},
	PhaseContraindicationCheck:     {PhaseContraindicationClearance, PhasePrimaryConcern},
	PhaseContraindicationClearance: {PhaseContraindicationClearance, PhasePrimaryConcern, PhaseTerminated},
	PhasePrimaryConcern:            {PhaseSeverity},
	PhaseSeverity:                  {PhaseDuration},
	PhaseDuration:                  {PhaseRelatedSymptomsPrompt},
	PhaseRelatedSymptomsPrompt:     {PhaseCollectRelatedSymptoms, PhaseLifestyleSleep},
	PhaseCollectRelatedSymptoms:    {PhaseLifestyleSleep},
	PhaseLifestyleSleep:            {PhaseLifestyleStress},
	PhaseLifestyleStress:           {PhaseLifestyleDigestive},
	PhaseLifestyleDigestive:        {PhaseLifestyleEnergy},
	PhaseLifestyleEnergy:           {PhaseMedicalHistoryPrompt},
	PhaseMedicalHistoryPrompt:      {PhaseCollectMedicalHistory, PhaseReportGeneration},
	PhaseCollectMedicalHistory:     {PhaseReportGeneration},
	PhaseReportGeneration:          {PhaseReportComplete},
	PhaseReportComplete:            {},
	PhaseTerminated:                {},
}

func (p Phase) Valid() bool {
	_, ok := transitions[p]
	return ok
}

func (p Phase) Terminal() bool {
	return p == PhaseReportComplete || p == PhaseTerminated
}

// CanMoveTo reports whether next is a direct successor of p.
func (p Phase) CanMoveTo(next Phase) bool {
	for _, n := range transitions[p] {
		if n == next {
			return true
		}
	}
	return false
}

const (
	DefaultPatientName   = "Patient"
	GenderNotSpecified   = "Not specified"
	NoMedicalHistory     = "No significant medical history reported"
	defaultPractitioner  = "Doctor"
	defaultSeverityScore = 5
)

type ContraindicationFlag struct {
	Condition string `json:"condition"`
	Cleared   bool   `json:"cleared"`
}

// Session is the mutable state of one assessment conversation.
type Session struct {
	ID        string `json:"id"`
	Phase     Phase  `json:"phase"`
	Locale    string `json:"locale"`
	ClinicID  string `json:"clinic_id,omitempty"`
	PatientID string `json:"patient_id,omitempty"`

	PractitionerName string `json:"practitioner_name"`
	PatientName      string `json:"patient_name"`
	PatientGender    string `json:"patient_gender"`
	PatientAge       string `json:"patient_age"`
	PatientDOB       string `json:"patient_dob"`

	PrimaryConcern    string                 `json:"primary_concern"`
	Severity          int                    `json:"severity"`
	Duration          string                 `json:"duration"`
	Symptoms          []string               `json:"symptoms"`
	Lifestyle         string                 `json:"lifestyle"`
	MedicalHistory    string                 `json:"medical_history"`
	Contraindications []ContraindicationFlag `json:"contraindications"`

	RecommendedTherapies []recommend.Recommendation     `json:"recommended_therapies,omitempty"`
	Supplements          []recommend.SelectedSupplement `json:"supplements,omitempty"`
	ReportText           string                         `json:"report_text,omitempty"`
	ReportID             string                         `json:"report_id,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Version counts successful writes to the store.
	Version int64 `json:"version"`
}

// PatientContext seeds a new session.
type PatientContext struct {
	ClinicID         string
	PatientID        string
	PatientName      string
	PatientGender    string
	PatientDOB       string
	PractitionerName string
	Locale           string
}

// Demographics is what the patient directory knows about a patient.
type Demographics struct {
	Name   string
	DOB    string
	Gender string
}

// Clone returns a deep copy; persistence and callers only ever see copies.
func (s *Session) Clone() *Session {
	c := *s
	c.Symptoms = slices.Clone(s.Symptoms)
	c.Contraindications = slices.Clone(s.Contraindications)
	if s.RecommendedTherapies != nil {
		c.RecommendedTherapies = make([]recommend.Recommendation, len(s.RecommendedTherapies))
		for i, r := range s.RecommendedTherapies {
			r.MatchedKeywords = slices.Clone(r.MatchedKeywords)
			r.Therapy.Keywords = slices.Clone(r.Therapy.Keywords)
			c.RecommendedTherapies[i] = r
		}
	}
	c.Supplements = slices.Clone(s.Supplements)
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

// Profile projects the fields the selectors score.
func (s *Session) Profile() recommend.Profile {
	return recommend.Profile{
		PrimaryConcern: s.PrimaryConcern,
		Symptoms:       slices.Clone(s.Symptoms),
		Lifestyle:      s.Lifestyle,
		MedicalHistory: s.MedicalHistory,
		Severity:       s.Severity,
		Duration:       s.Duration,
	}
}

// PrimaryTherapy returns the top recommendation, if any.
func (s *Session) PrimaryTherapy() (recommend.Recommendation, bool) {
	if len(s.RecommendedTherapies) == 0 {
		return recommend.Recommendation{}, false
	}
	return s.RecommendedTherapies[0], true
}

type gender int

const (
	genderUnspecified gender = iota
	genderMale
	genderFemale
)

func genderOf(recorded string) gender {
	switch strings.ToLower(strings.TrimSpace(recorded)) {
	case "male", "m", "man":
		return genderMale
	case "female", "f", "woman":
		return genderFemale
	default:
		return genderUnspecified
	}
}

func ageFrom(dob string, now time.Time) string {
	if len(dob) < 10 {
		return "Unknown"
	}
	born, err := time.Parse("2006-01-02", dob[:10])
	if err != nil || born.After(now) {
		return "Unknown"
	}
	years := now.Year() - born.Year()
	if now.Month() < born.Month() || (now.Month() == born.Month() && now.Day() < born.Day()) {
		years--
	}
	return strconv.Itoa(years)
}
