package assessment

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRenderer struct {
	calls int
}

func (r *countingRenderer) Render(s *Session) string {
	r.calls++
	return "REPORT: " + s.PrimaryConcern
}

var fixedNow = time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)

func newTestEngine() (*Engine, *countingRenderer) {
	r := &countingRenderer{}
	return NewEngine(r, WithClock(func() time.Time { return fixedNow })), r
}

func newTestSession(gender string) *Session {
	return &Session{
		ID:               "s1",
		Phase:            PhaseGreeting,
		Locale:           DefaultLocale,
		PractitionerName: "Smith",
		PatientName:      "Alex",
		PatientGender:    gender,
		PatientAge:       "42",
		Symptoms:         []string{},
	}
}

// walk feeds answers one by one and checks every move is an edge of the
// phase graph.
func walk(t *testing.T, e *Engine, s *Session, answers ...string) Turn {
	t.Helper()
	var turn Turn
	for _, a := range answers {
		from := s.Phase
		turn = e.Advance(s, a)
		if s.Phase != from && !(from == PhaseMedicalHistoryPrompt || from == PhaseCollectMedicalHistory) {
			require.True(t, from.CanMoveTo(s.Phase), "%s -> %s on %q", from, s.Phase, a)
		}
		require.Equal(t, s.Phase, turn.Phase)
	}
	return turn
}

func TestEngine_FullAssessment(t *testing.T) {
	e, r := newTestEngine()
	s := newTestSession("Female")

	walk(t, e, s, "Ready to begin")
	assert.Equal(t, PhaseContraindicationCheck, s.Phase)

	walk(t, e, s, "No, none of these conditions")
	assert.Equal(t, PhasePrimaryConcern, s.Phase)
	assert.Empty(t, s.Contraindications)

	turn := walk(t, e, s, "I can't sleep, terrible insomnia at night")
	assert.Equal(t, PhaseSeverity, s.Phase)
	assert.Equal(t, []string{"I can't sleep, terrible insomnia at night"}, s.Symptoms)
	assert.Len(t, turn.Choices, 5)

	walk(t, e, s, "7-8 (Severe)", "3-6 months")
	assert.Equal(t, 8, s.Severity)
	assert.Equal(t, "3-6 months", s.Duration)
	assert.Equal(t, PhaseRelatedSymptomsPrompt, s.Phase)

	walk(t, e, s, "Yes, there are other symptoms")
	assert.Equal(t, PhaseCollectRelatedSymptoms, s.Phase)

	walk(t, e, s, "feeling stressed")
	assert.Equal(t, PhaseLifestyleSleep, s.Phase)
	assert.Equal(t, "feeling stressed", s.Symptoms[1])

	walk(t, e, s, "Poor", "High", "No digestive issues", "Generally low")
	assert.Equal(t, PhaseMedicalHistoryPrompt, s.Phase)
	assert.Equal(t,
		"Sleep quality: Poor, Stress levels: High, Digestive health: No digestive issues, Energy: Generally low",
		s.Lifestyle)

	turn = walk(t, e, s, "No significant medical history")
	assert.Equal(t, PhaseReportComplete, s.Phase)
	assert.Equal(t, NoMedicalHistory, s.MedicalHistory)
	assert.True(t, turn.Complete)
	assert.True(t, turn.ReportGenerated)
	assert.Equal(t, "REPORT: I can't sleep, terrible insomnia at night", turn.Message)
	assert.Equal(t, turn.Message, s.ReportText)
	require.NotNil(t, s.CompletedAt)
	assert.Equal(t, fixedNow, *s.CompletedAt)

	primary, ok := s.PrimaryTherapy()
	require.True(t, ok)
	assert.Equal(t, "101", primary.Therapy.Code)
	assert.NotEmpty(t, s.Supplements)
	assert.LessOrEqual(t, len(s.Supplements), 5)
	assert.Equal(t, 1, r.calls)
}

func TestEngine_ReportCompleteOnlyTakesRestartOrClose(t *testing.T) {
	e, r := newTestEngine()
	s := newTestSession("Male")
	s.Phase = PhaseReportComplete
	s.PrimaryConcern = "insomnia"
	s.ReportText = "done"
	before := s.Clone()

	turn := e.Advance(s, "what about my back pain?")
	assert.Equal(t, "Assessment complete. Type 'restart' to begin a new assessment or 'close' to end this session.", turn.Message)
	assert.Equal(t, RequestNone, turn.Request)
	assert.True(t, turn.Complete)
	assert.Equal(t, before, s)

	assert.Equal(t, RequestRestart, e.Advance(s, "restart").Request)
	assert.Equal(t, RequestRestart, e.Advance(s, "Start new assessment").Request)
	assert.Equal(t, RequestClose, e.Advance(s, "close").Request)
	assert.Equal(t, RequestClose, e.Advance(s, "End").Request)
	assert.Equal(t, RequestClose, e.Advance(s, "Close session").Request)
	assert.Equal(t, 0, r.calls)
	assert.Equal(t, before, s)
}

func TestEngine_ReportCompleteMatchesWholeWords(t *testing.T) {
	e, _ := newTestEngine()
	s := newTestSession("Male")
	s.Phase = PhaseReportComplete
	s.ReportText = "done"
	before := s.Clone()

	for _, answer := range []string{
		"what do you recommend next?",
		"I knew it",
		"please send it again",
		"renewal options?",
		"closed on weekends?",
	} {
		turn := e.Advance(s, answer)
		assert.Equal(t, RequestNone, turn.Request, answer)
		assert.Equal(t, PhaseReportComplete, turn.Phase, answer)
		assert.True(t, turn.Complete, answer)
	}
	assert.Equal(t, before, s)
}

func TestEngine_ReportRenderedOnce(t *testing.T) {
	e, r := newTestEngine()
	s := newTestSession("Male")
	s.Phase = PhaseReportGeneration
	s.PrimaryConcern = "back pain"

	first := e.Advance(s, "")
	assert.True(t, first.ReportGenerated)

	s.Phase = PhaseReportGeneration
	second := e.Advance(s, "")
	assert.False(t, second.ReportGenerated)
	assert.Equal(t, first.Message, second.Message)
	assert.Equal(t, 1, r.calls)
}

func TestEngine_ContraindicationGate(t *testing.T) {
	tests := []struct {
		name      string
		answer    string
		wantPhase Phase
		cleared   bool
	}{
		{"affirmative with evidence", "yes with doctor agreement", PhasePrimaryConcern, true},
		{"choice label", "Yes, has written doctor agreement", PhasePrimaryConcern, true},
		{"bare yes", "yes", PhaseContraindicationClearance, false},
		{"evidence only", "her GP gave clearance", PhaseContraindicationClearance, false},
		{"no", "no", PhaseTerminated, false},
		{"refusal with evidence words", "No, the doctor has not agreed", PhaseTerminated, false},
		{"negated clearance", "yes, but no doctor clearance yet", PhaseTerminated, false},
		{"neither", "not sure", PhaseTerminated, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEngine()
			s := newTestSession("Female")
			walk(t, e, s, "ready", "Yes, she has a pacemaker")
			require.Equal(t, PhaseContraindicationClearance, s.Phase)
			require.Equal(t, []ContraindicationFlag{{Condition: "Pacemaker or implanted device"}}, s.Contraindications)

			turn := walk(t, e, s, tt.answer)
			assert.Equal(t, tt.wantPhase, s.Phase)
			assert.Equal(t, tt.cleared, s.Contraindications[0].Cleared)
			assert.Equal(t, tt.wantPhase == PhaseTerminated, turn.Complete)
			if tt.wantPhase == PhaseTerminated {
				assert.Contains(t, turn.Message, "Assessment terminated for safety reasons.")
			}
		})
	}
}

func TestEngine_ContraindicationListFollowsGender(t *testing.T) {
	for gender, wantPregnancy := range map[string]bool{
		"Male":             false,
		"male":             false,
		"Female":           true,
		GenderNotSpecified: true,
	} {
		e, _ := newTestEngine()
		s := newTestSession(gender)
		turn := e.Advance(s, "Ready to begin")

		require.Equal(t, PhaseContraindicationCheck, turn.Phase)
		assert.Equal(t, wantPregnancy, strings.Contains(turn.Message, "Pregnancy"), gender)
		assert.Contains(t, turn.Message, "pacemaker")
	}
}

func TestEngine_PronounsFollowGender(t *testing.T) {
	tests := map[string][]string{
		"Male":             {"whether he has", "his PRIMARY", "brings him in"},
		"Female":           {"whether she has", "her PRIMARY", "brings her in"},
		GenderNotSpecified: {"whether they have", "their PRIMARY", "brings them in"},
	}
	for gender, phrases := range tests {
		e, _ := newTestEngine()
		s := newTestSession(gender)
		check := e.Advance(s, "ready")
		concern := e.Advance(s, "none")

		assert.Contains(t, check.Message, phrases[0], gender)
		assert.Contains(t, concern.Message, phrases[1], gender)
		assert.Contains(t, concern.Message, phrases[2], gender)
	}
}

func TestEngine_GreetingShowsPatient(t *testing.T) {
	e, _ := newTestEngine()
	s := newTestSession("Female")

	turn := e.Greeting(s)
	assert.Equal(t, PhaseGreeting, turn.Phase)
	assert.Contains(t, turn.Message, "Dr. Smith")
	assert.Contains(t, turn.Message, "- Name: Alex")
	assert.Contains(t, turn.Message, "- Age: 42")
	assert.Equal(t, []string{"Ready to begin", "Need a moment"}, turn.Choices)

	s.PractitionerName = ""
	assert.Contains(t, e.Greeting(s).Message, "Good day Doctor.")
}

func TestEngine_GreetingAdvancesOnAnyInput(t *testing.T) {
	e, _ := newTestEngine()
	s := newTestSession("Female")

	e.Advance(s, "")
	assert.Equal(t, PhaseContraindicationCheck, s.Phase)
}

func TestEngine_EmptyInputRepromptsWithoutMutation(t *testing.T) {
	e, _ := newTestEngine()
	s := newTestSession("Female")
	s.Phase = PhaseSeverity
	s.PrimaryConcern = "back pain"
	s.Symptoms = []string{"back pain"}
	before := s.Clone()

	turn := e.Advance(s, "   ")
	assert.Equal(t, before, s)
	assert.Equal(t, PhaseSeverity, turn.Phase)
	assert.True(t, strings.HasPrefix(turn.Message, "I didn't catch an answer."))
	assert.Len(t, turn.Choices, 5)
}

func TestEngine_UnknownPhaseFailsSoft(t *testing.T) {
	e, _ := newTestEngine()
	s := newTestSession("Female")
	s.Phase = Phase("corrupted")
	before := s.Clone()

	turn := e.Advance(s, "hello")
	assert.Equal(t, "Please continue with the assessment.", turn.Message)
	assert.Equal(t, Phase("corrupted"), turn.Phase)
	assert.Equal(t, before, s)
}

func TestEngine_TerminatedIsStatic(t *testing.T) {
	e, _ := newTestEngine()
	s := newTestSession("Male")
	s.Phase = PhaseTerminated
	before := s.Clone()

	turn := e.Advance(s, "he also has headaches")
	assert.Equal(t, before, s)
	assert.True(t, turn.Complete)
	assert.Contains(t, turn.Message, "safety reasons")
	assert.Contains(t, turn.Message, "his GP")
}

func TestEngine_FreeTextAnswersAreKept(t *testing.T) {
	e, _ := newTestEngine()

	s := newTestSession("Female")
	s.Phase = PhaseRelatedSymptomsPrompt
	s.Symptoms = []string{"fatigue"}
	turn := e.Advance(s, "headaches most days")
	assert.Equal(t, PhaseLifestyleSleep, s.Phase)
	assert.Equal(t, []string{"fatigue", "headaches most days"}, s.Symptoms)
	assert.Contains(t, turn.Message, "Additional symptoms noted: headaches most days")

	s = newTestSession("Female")
	s.Phase = PhaseRelatedSymptomsPrompt
	s.Symptoms = []string{"fatigue"}
	e.Advance(s, "No other symptoms")
	assert.Equal(t, []string{"fatigue"}, s.Symptoms)

	s = newTestSession("Female")
	s.Phase = PhaseMedicalHistoryPrompt
	e.Advance(s, "Type 2 diabetes, on metformin")
	assert.Equal(t, "Type 2 diabetes, on metformin", s.MedicalHistory)
	assert.Equal(t, PhaseReportComplete, s.Phase)

	s = newTestSession("Female")
	s.Phase = PhaseMedicalHistoryPrompt
	e.Advance(s, "Yes, has relevant medical history")
	assert.Equal(t, PhaseCollectMedicalHistory, s.Phase)
	e.Advance(s, "Hypothyroidism")
	assert.Equal(t, "Hypothyroidism", s.MedicalHistory)
	assert.Equal(t, PhaseReportComplete, s.Phase)
}

func TestEngine_LongAnswersWithYesOrNoAreKept(t *testing.T) {
	e, _ := newTestEngine()

	for _, answer := range []string{"Hypertension, yes on ramipril", "Asthma, no surgeries"} {
		s := newTestSession("Female")
		s.Phase = PhaseMedicalHistoryPrompt
		e.Advance(s, answer)
		assert.Equal(t, answer, s.MedicalHistory)
		assert.Equal(t, PhaseReportComplete, s.Phase)
	}

	s := newTestSession("Female")
	s.Phase = PhaseRelatedSymptomsPrompt
	s.Symptoms = []string{"fatigue"}
	e.Advance(s, "Yes, headaches and dizziness in the evening")
	assert.Equal(t, PhaseLifestyleSleep, s.Phase)
	assert.Equal(t, []string{"fatigue", "Yes, headaches and dizziness in the evening"}, s.Symptoms)

	for answer, want := range map[string]Phase{
		"no":                                PhaseReportComplete,
		"No history":                        PhaseReportComplete,
		"yes":                               PhaseCollectMedicalHistory,
		"Yes, has relevant medical history": PhaseCollectMedicalHistory,
	} {
		s := newTestSession("Female")
		s.Phase = PhaseMedicalHistoryPrompt
		e.Advance(s, answer)
		assert.Equal(t, want, s.Phase, answer)
		if want == PhaseReportComplete {
			assert.Equal(t, NoMedicalHistory, s.MedicalHistory, answer)
		}
	}
}

func TestEngine_UnknownLocaleFallsBack(t *testing.T) {
	e, _ := newTestEngine()
	s := newTestSession("Female")
	s.Locale = "xx-XX"

	assert.Contains(t, e.Greeting(s).Message, "I'm Cello")
}
