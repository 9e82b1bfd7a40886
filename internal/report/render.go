package report

import (
	"fmt"
	"strings"

	"wellness-agent/internal/assessment"
	"wellness-agent/internal/recommend"
)

const dateLayout = "02/01/2006"

// Renderer formats a completed assessment as plain text. It reads the
// session only, so rendering the same session twice gives the same bytes.
type Renderer struct {
	title  string
	footer string
}

func NewRenderer() *Renderer {
	return &Renderer{
		title:  "HOLISTIC HEALTH ASSESSMENT REPORT",
		footer: "Report generated by the clinical assessment assistant",
	}
}

func (r *Renderer) Render(s *assessment.Session) string {
	var b strings.Builder

	rule := strings.Repeat("=", 44)
	fmt.Fprintf(&b, "%s\n%s\n\n", r.title, rule)

	section(&b, "PATIENT INFORMATION")
	fmt.Fprintf(&b, "Name: %s\n", s.PatientName)
	fmt.Fprintf(&b, "Age: %s\n", ageLine(s.PatientAge))
	fmt.Fprintf(&b, "Gender: %s\n", s.PatientGender)
	fmt.Fprintf(&b, "Date of Birth: %s\n", orDefault(s.PatientDOB, "Not recorded"))
	fmt.Fprintf(&b, "Assessment Date: %s\n", assessmentDate(s))
	fmt.Fprintf(&b, "Practitioner: %s\n\n", practitionerLine(s.PractitionerName))

	section(&b, "PATIENT HEALTH OVERVIEW")
	fmt.Fprintf(&b, "Primary Complaint: %s\n", s.PrimaryConcern)
	fmt.Fprintf(&b, "Duration: %s\n", s.Duration)
	fmt.Fprintf(&b, "Severity Score: %d/10\n\n", s.Severity)

	section(&b, "SYMPTOM ANALYSIS")
	if len(s.Symptoms) == 0 {
		b.WriteString("No symptoms recorded\n")
	}
	for i, symptom := range s.Symptoms {
		fmt.Fprintf(&b, "%d. %s\n", i+1, symptom)
	}
	b.WriteString("\n")

	section(&b, "LIFESTYLE FACTORS")
	fmt.Fprintf(&b, "%s\n\n", orDefault(s.Lifestyle, "Not recorded"))

	section(&b, "MEDICAL HISTORY")
	fmt.Fprintf(&b, "%s\n\n", orDefault(s.MedicalHistory, assessment.NoMedicalHistory))

	if len(s.Contraindications) > 0 {
		section(&b, "CONTRAINDICATIONS")
		for _, f := range s.Contraindications {
			status := "NOT CLEARED"
			if f.Cleared {
				status = "cleared by doctor or GP"
			}
			fmt.Fprintf(&b, "- %s (%s)\n", f.Condition, status)
		}
		b.WriteString("\n")
	}

	section(&b, "RECOMMENDED THERAPY PROTOCOL")
	if primary, ok := s.PrimaryTherapy(); ok {
		writeProtocol(&b, primary)
		for _, rec := range s.RecommendedTherapies[1:] {
			fmt.Fprintf(&b, "%s Therapy: %s - %s (score %d)\n", label(rec.Rank), rec.Therapy.Code, rec.Therapy.Name, rec.Score)
		}
		if len(s.RecommendedTherapies) > 1 {
			b.WriteString("\n")
		}
	} else {
		b.WriteString("No therapy selected\n\n")
	}

	section(&b, "SUPPORTING SUPPLEMENTS")
	if len(s.Supplements) == 0 {
		b.WriteString("No supplements selected\n")
	}
	for i, sup := range s.Supplements {
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, sup.Name, sup.Priority)
		fmt.Fprintf(&b, "   Dosage: %s, %s\n", sup.Dosage, sup.Timing)
		fmt.Fprintf(&b, "   Duration: %s\n", sup.Duration)
		if sup.Brands != "" {
			fmt.Fprintf(&b, "   Brands: %s\n", sup.Brands)
		}
		fmt.Fprintf(&b, "   Reason: %s\n", sup.Reason)
	}
	b.WriteString("\n")

	section(&b, "IMPORTANT CONSIDERATIONS")
	b.WriteString("- This therapy complements but does not replace conventional medical care\n")
	b.WriteString("- Regular monitoring of progress is recommended\n")
	b.WriteString("- Lifestyle modifications will enhance treatment effectiveness\n")
	b.WriteString("- Follow-up assessment recommended after 4 weeks\n\n")

	fmt.Fprintf(&b, "%s\n%s\n", rule, r.footer)
	return b.String()
}

func writeProtocol(b *strings.Builder, rec recommend.Recommendation) {
	t := rec.Therapy
	fmt.Fprintf(b, "Therapy Code: %s\n", t.Code)
	fmt.Fprintf(b, "Therapy Name: %s\n", t.Name)
	if len(rec.MatchedKeywords) > 0 {
		fmt.Fprintf(b, "Matched On: %s\n", strings.Join(rec.MatchedKeywords, ", "))
	}
	b.WriteString("\nPrescribing Guidelines:\n")
	fmt.Fprintf(b, "- Duration: %d minutes per session\n", t.SessionMinutes)
	fmt.Fprintf(b, "- Frequency: %s\n", t.Frequency)
	fmt.Fprintf(b, "- Course Length: %s\n", t.CourseLength)
	fmt.Fprintf(b, "- Total Sessions: %s\n\n", t.TotalSessions)
}

func section(b *strings.Builder, name string) {
	fmt.Fprintf(b, "%s\n%s\n", name, strings.Repeat("-", len(name)))
}

func label(rank recommend.Rank) string {
	switch rank {
	case recommend.RankSecondary:
		return "Secondary"
	case recommend.RankAdjunct:
		return "Adjunct"
	default:
		return "Primary"
	}
}

func assessmentDate(s *assessment.Session) string {
	if s.CompletedAt != nil {
		return s.CompletedAt.Format(dateLayout)
	}
	return s.UpdatedAt.Format(dateLayout)
}

func ageLine(age string) string {
	if age == "" || age == "Unknown" {
		return "Unknown"
	}
	return age + " years"
}

func practitionerLine(name string) string {
	if strings.TrimSpace(name) == "" {
		return "Not recorded"
	}
	return assessment.PractitionerAddress(name)
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
