package assessment

import (
	"bytes"
	"strings"
	"text/template"
)

const DefaultLocale = "en-GB"

type promptKey string

// Acknowledgements open a reply; the next phase's question follows.
const (
	ackNoContraindications promptKey = "ack.no_contraindications"
	ackClearanceNeeded     promptKey = "ack.clearance_needed"
	ackClearanceMissing    promptKey = "ack.clearance_missing"
	ackClearanceGranted    promptKey = "ack.clearance_granted"
	ackSafetyStop          promptKey = "ack.safety_stop"
	ackConcern             promptKey = "ack.concern"
	ackSeverity            promptKey = "ack.severity"
	ackDuration            promptKey = "ack.duration"
	ackRelated             promptKey = "ack.related"
	ackNoRelated           promptKey = "ack.no_related"
	ackSleep               promptKey = "ack.sleep"
	ackStress              promptKey = "ack.stress"
	ackDigestive           promptKey = "ack.digestive"
	ackEnergy              promptKey = "ack.energy"
	ackReprompt            promptKey = "ack.reprompt"
	msgContinue            promptKey = "msg.continue"
	msgClosed              promptKey = "msg.closed"
)

type prompt struct {
	tmpl    *template.Template
	choices []string
}

// promptData is everything a template may reference.
type promptData struct {
	Address           string
	Patient           string
	Age               string
	Gender            string
	Subject           string
	SubjectHas        string
	Possessive        string
	Object            string
	Contraindications []string
	Answer            string
	Severity          int
}

var funcs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}

func mustPrompt(name, text string, choices ...string) prompt {
	return prompt{
		tmpl:    template.Must(template.New(name).Funcs(funcs).Parse(text)),
		choices: choices,
	}
}

type promptSet struct {
	questions map[Phase]prompt
	messages  map[promptKey]prompt
}

var locales = map[string]*promptSet{
	DefaultLocale: enGB(),
}

func enGB() *promptSet {
	return &promptSet{
		questions: map[Phase]prompt{
			PhaseGreeting: mustPrompt("greeting",
				"Good day {{.Address}}. I'm Cello, your clinical assistant.\n\n"+
					"I'll be helping you conduct a bioelectronic therapy assessment for {{.Patient}}.\n\n"+
					"Patient Information:\n- Name: {{.Patient}}\n- Age: {{.Age}}\n- Gender: {{.Gender}}\n\n"+
					"Let's begin the assessment. Please confirm you're ready to proceed.",
				"Ready to begin", "Need a moment"),
			PhaseContraindicationCheck: mustPrompt("contraindications",
				"{{.Address}}, I need to check for safety contraindications.\n\n"+
					"Please ask {{.Patient}} whether {{.SubjectHas}} any of the following:\n"+
					"{{range $i, $c := .Contraindications}}{{inc $i}}. {{$c}}\n{{end}}\n"+
					"Does {{.Patient}} have any of these conditions?",
				"Yes, one or more conditions present", "No, none of these conditions"),
			PhaseContraindicationClearance: mustPrompt("clearance",
				"Does {{.Patient}} have written agreement from {{.Possessive}} doctor or GP to proceed with bioelectronic therapy?",
				"Yes, has written doctor agreement", "No, does not have clearance"),
			PhasePrimaryConcern: mustPrompt("primary_concern",
				"{{.Address}}, please ask {{.Patient}} to describe {{.Possessive}} PRIMARY health concern or the main symptom that brings {{.Object}} in today."),
			PhaseSeverity: mustPrompt("severity",
				"{{.Address}}, please ask {{.Patient}} to rate the severity of this condition on a scale of 1 to 10, where 1 is mild and 10 is severe.",
				"1-2 (Mild)", "3-4 (Mild-Moderate)", "5-6 (Moderate)", "7-8 (Severe)", "9-10 (Very Severe)"),
			PhaseDuration: mustPrompt("duration",
				"Please ask {{.Patient}} how long {{.SubjectHas}} been experiencing this condition.",
				"Less than 1 month", "1-3 months", "3-6 months", "6-12 months", "Over 1 year"),
			PhaseRelatedSymptomsPrompt: mustPrompt("related_prompt",
				"{{.Address}}, are there any OTHER symptoms or related health issues {{.Patient}} is experiencing?",
				"Yes, there are other symptoms", "No other symptoms"),
			PhaseCollectRelatedSymptoms: mustPrompt("related_collect",
				"Please describe the additional symptoms {{.Patient}} is experiencing:"),
			PhaseLifestyleSleep: mustPrompt("sleep",
				"Now I need to understand {{.Patient}}'s lifestyle factors. How would you describe {{.Possessive}} sleep quality?",
				"Excellent", "Good", "Fair", "Poor", "Very Poor"),
			PhaseLifestyleStress: mustPrompt("stress",
				"How would you rate {{.Patient}}'s current stress levels?",
				"Low", "Moderate", "High", "Very High"),
			PhaseLifestyleDigestive: mustPrompt("digestive",
				"Does {{.Patient}} experience any digestive issues?",
				"No digestive issues", "Occasional digestive discomfort", "Frequent digestive problems", "Chronic digestive conditions"),
			PhaseLifestyleEnergy: mustPrompt("energy",
				"How would you describe {{.Patient}}'s energy levels throughout the day?",
				"High energy throughout", "Generally good", "Afternoon slump", "Generally low", "Constantly fatigued"),
			PhaseMedicalHistoryPrompt: mustPrompt("history_prompt",
				"Finally, {{.Address}}, does {{.Patient}} have any relevant medical history, current medications, or previous treatments we should be aware of?",
				"Yes, has relevant medical history", "No significant medical history"),
			PhaseCollectMedicalHistory: mustPrompt("history_collect",
				"Please provide details of {{.Patient}}'s medical history, medications and previous treatments:"),
			PhaseReportComplete: mustPrompt("complete",
				"Assessment complete. Type 'restart' to begin a new assessment or 'close' to end this session.",
				"Start new assessment", "Close session"),
			PhaseTerminated: mustPrompt("terminated",
				"This assessment was stopped for safety reasons. {{.Patient}} needs written clearance from {{.Possessive}} GP before bioelectronic therapy can be assessed. Type 'restart' to begin a new assessment.",
				"Start new assessment", "Close session"),
		},
		messages: map[promptKey]prompt{
			ackNoContraindications: mustPrompt("ack_none", "Thank you for confirming. No contraindications noted."),
			ackClearanceNeeded:     mustPrompt("ack_clearance_needed", "Important: the condition mentioned requires medical clearance before we continue."),
			ackClearanceMissing: mustPrompt("ack_clearance_missing",
				"I need confirmation that {{.Possessive}} doctor or GP has agreed before we can continue. Reply 'yes, doctor agreed' to continue or 'no' to stop."),
			ackClearanceGranted: mustPrompt("ack_clearance_granted", "Medical clearance noted. We can proceed with caution."),
			ackSafetyStop: mustPrompt("ack_safety_stop",
				"I'm sorry, but we cannot proceed with the assessment without medical clearance for the contraindication.\n\n"+
					"Please have {{.Patient}} obtain written clearance from {{.Possessive}} GP before continuing with bioelectronic therapy.\n\n"+
					"Assessment terminated for safety reasons."),
			ackConcern:   mustPrompt("ack_concern", "I understand {{.Patient}}'s primary concern is: \"{{.Answer}}\""),
			ackSeverity:  mustPrompt("ack_severity", "Severity score of {{.Severity}}/10 noted."),
			ackDuration:  mustPrompt("ack_duration", "Duration of {{.Answer}} recorded."),
			ackRelated:   mustPrompt("ack_related", "Additional symptoms noted: {{.Answer}}"),
			ackNoRelated: mustPrompt("ack_no_related", "No additional symptoms noted."),
			ackSleep:     mustPrompt("ack_sleep", "Sleep quality recorded as {{.Answer}}."),
			ackStress:    mustPrompt("ack_stress", "Stress level recorded as {{.Answer}}."),
			ackDigestive: mustPrompt("ack_digestive", "Digestive status noted."),
			ackEnergy:    mustPrompt("ack_energy", "Energy levels recorded."),
			ackReprompt:  mustPrompt("ack_reprompt", "I didn't catch an answer."),
			msgContinue:  mustPrompt("continue", "Please continue with the assessment."),
			msgClosed:    mustPrompt("closed", "Thank you. This assessment session has been closed."),
		},
	}
}

func promptsFor(locale string) *promptSet {
	if set, ok := locales[locale]; ok {
		return set
	}
	return locales[DefaultLocale]
}

// contraindicationList is what the practitioner is asked to rule out.
// Pregnancy is skipped only when the patient is recorded as male.
func contraindicationList(g gender) []string {
	list := []string{"A pacemaker or other implanted electronic device"}
	if g != genderMale {
		list = append(list, "Pregnancy (especially the first trimester)")
	}
	return append(list,
		"Active cancer or current cancer treatment",
		"A stroke or heart attack within the last six weeks",
	)
}

func newPromptData(s *Session) promptData {
	d := promptData{
		Address:           PractitionerAddress(s.PractitionerName),
		Patient:           s.PatientName,
		Age:               s.PatientAge,
		Gender:            s.PatientGender,
		Contraindications: contraindicationList(genderOf(s.PatientGender)),
		Severity:          s.Severity,
	}
	if d.Patient == "" {
		d.Patient = DefaultPatientName
	}
	if d.Age == "" {
		d.Age = "Unknown"
	}
	switch genderOf(s.PatientGender) {
	case genderMale:
		d.Subject, d.Possessive, d.Object = "he", "his", "him"
		d.SubjectHas = "he has"
	case genderFemale:
		d.Subject, d.Possessive, d.Object = "she", "her", "her"
		d.SubjectHas = "she has"
	default:
		d.Subject, d.Possessive, d.Object = "they", "their", "them"
		d.SubjectHas = "they have"
	}
	return d
}

// PractitionerAddress is how the practitioner is addressed in prompts and
// reports: "Dr. Smith", or plain "Doctor" when no surname is known.
func PractitionerAddress(practitioner string) string {
	practitioner = strings.TrimSpace(practitioner)
	if practitioner == "" || strings.EqualFold(practitioner, defaultPractitioner) {
		return defaultPractitioner
	}
	if len(practitioner) > 3 && strings.EqualFold(practitioner[:3], "dr.") {
		return "Dr. " + strings.TrimSpace(practitioner[3:])
	}
	return "Dr. " + practitioner
}

func (p prompt) render(d promptData) string {
	var buf bytes.Buffer
	// Templates are parsed at start-up and only reference promptData fields.
	_ = p.tmpl.Execute(&buf, d)
	return buf.String()
}
