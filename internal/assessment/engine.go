package assessment

import (
	"strings"
	"time"

	"wellness-agent/internal/recommend"
)

// Renderer turns a completed session into report text.
type Renderer interface {
	Render(s *Session) string
}

// RendererFunc adapts a plain function to Renderer.
type RendererFunc func(s *Session) string

func (f RendererFunc) Render(s *Session) string { return f(s) }

// Request is a session-level action the engine asks its caller to perform.
type Request int

const (
	RequestNone Request = iota
	RequestRestart
	RequestClose
)

// Turn is the engine's answer to one utterance.
type Turn struct {
	Message  string
	Choices  []string
	Phase    Phase
	Complete bool
	Request  Request
	// ReportGenerated is set on the single turn that produced the report.
	ReportGenerated bool
}

type Engine struct {
	therapies   *recommend.TherapySelector
	supplements *recommend.SupplementSelector
	renderer    Renderer
	now         func() time.Time
}

type EngineOption func(*Engine)

func WithTherapySelector(s *recommend.TherapySelector) EngineOption {
	return func(e *Engine) { e.therapies = s }
}

func WithSupplementSelector(s *recommend.SupplementSelector) EngineOption {
	return func(e *Engine) { e.supplements = s }
}

func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

func NewEngine(renderer Renderer, opts ...EngineOption) *Engine {
	e := &Engine{
		therapies:   recommend.NewTherapySelector(),
		supplements: recommend.NewSupplementSelector(),
		renderer:    renderer,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Greeting is the opening prompt of a fresh session.
func (e *Engine) Greeting(s *Session) Turn {
	return e.ask(s, "")
}

// Farewell is the closing message for an explicit close.
func (e *Engine) Farewell(s *Session) Turn {
	return Turn{Message: e.message(s, msgClosed), Phase: s.Phase, Complete: true, Request: RequestClose}
}

// Advance applies one utterance to s. It never fails: unknown phases and
// empty input leave s untouched.
func (e *Engine) Advance(s *Session, utterance string) Turn {
	utterance = strings.TrimSpace(utterance)

	if !s.Phase.Valid() {
		return Turn{Message: e.message(s, msgContinue), Phase: s.Phase}
	}
	if s.Phase.Terminal() {
		return e.terminal(s, utterance)
	}
	if utterance == "" && s.Phase != PhaseGreeting && s.Phase != PhaseReportGeneration {
		return e.ask(s, ackReprompt)
	}

	words := tokenize(utterance)

	switch s.Phase {
	case PhaseGreeting:
		s.Phase = PhaseContraindicationCheck
		return e.ask(s, "")

	case PhaseContraindicationCheck:
		if !hasAffirmative(words) {
			s.Phase = PhasePrimaryConcern
			return e.ask(s, ackNoContraindications)
		}
		s.Contraindications = append(s.Contraindications, detectConditions(utterance)...)
		s.Phase = PhaseContraindicationClearance
		return e.ask(s, ackClearanceNeeded)

	case PhaseContraindicationClearance:
		return e.clearance(s, words)

	case PhasePrimaryConcern:
		s.PrimaryConcern = utterance
		s.Symptoms = []string{utterance}
		s.Phase = PhaseSeverity
		return e.askWith(s, ackConcern, utterance)

	case PhaseSeverity:
		s.Severity = parseSeverity(utterance)
		s.Phase = PhaseDuration
		return e.ask(s, ackSeverity)

	case PhaseDuration:
		s.Duration = utterance
		s.Phase = PhaseRelatedSymptomsPrompt
		return e.askWith(s, ackDuration, utterance)

	case PhaseRelatedSymptomsPrompt:
		switch yes, no := e.yesNo(s, utterance, words); {
		case yes:
			s.Phase = PhaseCollectRelatedSymptoms
			return e.ask(s, "")
		case no:
			s.Phase = PhaseLifestyleSleep
			return e.ask(s, ackNoRelated)
		}
		s.Symptoms = append(s.Symptoms, utterance)
		s.Phase = PhaseLifestyleSleep
		return e.askWith(s, ackRelated, utterance)

	case PhaseCollectRelatedSymptoms:
		s.Symptoms = append(s.Symptoms, utterance)
		s.Phase = PhaseLifestyleSleep
		return e.askWith(s, ackRelated, utterance)

	case PhaseLifestyleSleep:
		appendLifestyle(s, "Sleep quality", utterance)
		s.Phase = PhaseLifestyleStress
		return e.askWith(s, ackSleep, utterance)

	case PhaseLifestyleStress:
		appendLifestyle(s, "Stress levels", utterance)
		s.Phase = PhaseLifestyleDigestive
		return e.askWith(s, ackStress, utterance)

	case PhaseLifestyleDigestive:
		appendLifestyle(s, "Digestive health", utterance)
		s.Phase = PhaseLifestyleEnergy
		return e.ask(s, ackDigestive)

	case PhaseLifestyleEnergy:
		appendLifestyle(s, "Energy", utterance)
		s.Phase = PhaseMedicalHistoryPrompt
		return e.ask(s, ackEnergy)

	case PhaseMedicalHistoryPrompt:
		switch yes, no := e.yesNo(s, utterance, words); {
		case yes:
			s.Phase = PhaseCollectMedicalHistory
			return e.ask(s, "")
		case no:
			s.MedicalHistory = NoMedicalHistory
		default:
			s.MedicalHistory = utterance
		}
		s.Phase = PhaseReportGeneration
		return e.generate(s)

	case PhaseCollectMedicalHistory:
		s.MedicalHistory = utterance
		s.Phase = PhaseReportGeneration
		return e.generate(s)

	case PhaseReportGeneration:
		return e.generate(s)
	}

	return Turn{Message: e.message(s, msgContinue), Phase: s.Phase}
}

func (e *Engine) clearance(s *Session, words []string) Turn {
	affirmative := hasAffirmative(words)
	evidence := hasClearanceEvidence(words)

	switch {
	case affirmative && evidence && !hasNegative(words):
		for i := range s.Contraindications {
			s.Contraindications[i].Cleared = true
		}
		s.Phase = PhasePrimaryConcern
		return e.ask(s, ackClearanceGranted)
	case affirmative != evidence && !hasNegative(words):
		return e.ask(s, ackClearanceMissing)
	}

	s.Phase = PhaseTerminated
	return Turn{
		Message:  e.message(s, ackSafetyStop),
		Phase:    s.Phase,
		Complete: true,
	}
}

// generate runs the selectors and the renderer once per session.
func (e *Engine) generate(s *Session) Turn {
	generated := false
	if s.ReportText == "" {
		recs := e.therapies.Select(s.Profile())
		s.RecommendedTherapies = recs
		s.Supplements = e.supplements.Select(recs, s.Lifestyle, s.Severity)
		completed := e.now()
		s.CompletedAt = &completed
		s.ReportText = e.renderer.Render(s)
		generated = true
	}
	s.Phase = PhaseReportComplete

	return Turn{
		Message:         s.ReportText,
		Choices:         e.choices(s),
		Phase:           s.Phase,
		Complete:        true,
		ReportGenerated: generated,
	}
}

func (e *Engine) terminal(s *Session, utterance string) Turn {
	words := tokenize(utterance)
	switch {
	case hasAny(words, restartWords):
		return Turn{Phase: s.Phase, Complete: true, Request: RequestRestart}
	case hasAny(words, closeWords):
		return e.Farewell(s)
	}
	t := e.ask(s, "")
	t.Complete = true
	return t
}

// ask renders an optional acknowledgement followed by the current phase's
// question.
func (e *Engine) ask(s *Session, ack promptKey) Turn {
	return e.askWith(s, ack, "")
}

func (e *Engine) askWith(s *Session, ack promptKey, answer string) Turn {
	set := promptsFor(s.Locale)
	data := newPromptData(s)
	data.Answer = answer

	var parts []string
	if ack != "" {
		parts = append(parts, set.messages[ack].render(data))
	}
	q := set.questions[s.Phase]
	if q.tmpl != nil {
		parts = append(parts, q.render(data))
	}
	return Turn{
		Message: strings.Join(parts, "\n\n"),
		Choices: append([]string(nil), q.choices...),
		Phase:   s.Phase,
	}
}

func (e *Engine) message(s *Session, key promptKey) string {
	return promptsFor(s.Locale).messages[key].render(newPromptData(s))
}

func (e *Engine) choices(s *Session) []string {
	return append([]string(nil), promptsFor(s.Locale).questions[s.Phase].choices...)
}

// yesNo reads a prompt answer as a plain yes or no only when it is one of
// the offered choices or a short reply led by yes or no. Anything longer is
// free text and is kept as the answer.
func (e *Engine) yesNo(s *Session, utterance string, words []string) (yes, no bool) {
	if len(words) == 0 {
		return false, false
	}
	short := len(words) <= shortAnswerWords
	for _, c := range e.choices(s) {
		if strings.EqualFold(c, utterance) {
			short = true
			break
		}
	}
	if !short {
		return false, false
	}
	return affirmativeWords[words[0]], negativeWords[words[0]]
}

func appendLifestyle(s *Session, label, answer string) {
	fragment := label + ": " + answer
	if s.Lifestyle == "" {
		s.Lifestyle = fragment
		return
	}
	s.Lifestyle += ", " + fragment
}
