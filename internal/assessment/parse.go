package assessment

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	affirmativeWords = map[string]bool{"yes": true, "yeah": true, "yep": true, "y": true}
	negativeWords    = map[string]bool{"no": true, "nope": true, "none": true, "n": true}
	clinicianWords   = map[string]bool{"doctor": true, "gp": true, "physician": true}
	approvalPrefixes = []string{"agree", "clearance", "cleared", "approv"}

	restartWords = map[string]bool{"restart": true, "new": true}
	closeWords   = map[string]bool{"close": true, "end": true}
)

// shortAnswerWords is the longest reply still read as a bare yes or no.
const shortAnswerWords = 3

// tokenize lowercases text and splits it into words, dropping a trailing
// possessive so "doctor's" reads as "doctor".
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSuffix(strings.Trim(f, "'"), "'s")
		if f != "" {
			words = append(words, f)
		}
	}
	return words
}

func hasAny(words []string, set map[string]bool) bool {
	for _, w := range words {
		if set[w] {
			return true
		}
	}
	return false
}

func hasAffirmative(words []string) bool { return hasAny(words, affirmativeWords) }

func hasNegative(words []string) bool { return hasAny(words, negativeWords) }

func hasClearanceEvidence(words []string) bool {
	if !hasAny(words, clinicianWords) {
		return false
	}
	for _, w := range words {
		for _, p := range approvalPrefixes {
			if strings.HasPrefix(w, p) {
				return true
			}
		}
	}
	return false
}

var (
	severityBand  = regexp.MustCompile(`\b(\d{1,2})\s*-\s*(\d{1,2})\b`)
	severityFirst = regexp.MustCompile(`\d+`)
)

// parseSeverity reads a 1..10 score. A band such as "7-8 (Severe)" maps to
// its upper value; unparseable input yields the default of 5.
func parseSeverity(text string) int {
	if m := severityBand.FindStringSubmatch(text); m != nil {
		if hi, err := strconv.Atoi(m[2]); err == nil {
			return clampSeverity(hi)
		}
	}
	if m := severityFirst.FindString(text); m != "" {
		if n, err := strconv.Atoi(m); err == nil {
			return clampSeverity(n)
		}
	}
	return defaultSeverityScore
}

func clampSeverity(n int) int {
	switch {
	case n < 1:
		return 1
	case n > 10:
		return 10
	}
	return n
}

type condition struct {
	marker string
	label  string
}

var knownConditions = []condition{
	{"pacemaker", "Pacemaker or implanted device"},
	{"implant", "Pacemaker or implanted device"},
	{"pregnan", "Pregnancy"},
	{"cancer", "Active cancer treatment"},
	{"stroke", "Recent stroke"},
	{"heart attack", "Recent heart attack"},
}

const unspecifiedCondition = "Unspecified condition"

// detectConditions names the contraindications mentioned in text, or a
// single unspecified flag when none is recognised.
func detectConditions(text string) []ContraindicationFlag {
	lower := strings.ToLower(text)
	var flags []ContraindicationFlag
	seen := map[string]bool{}
	for _, c := range knownConditions {
		if strings.Contains(lower, c.marker) && !seen[c.label] {
			seen[c.label] = true
			flags = append(flags, ContraindicationFlag{Condition: c.label})
		}
	}
	if len(flags) == 0 {
		flags = append(flags, ContraindicationFlag{Condition: unspecifiedCondition})
	}
	return flags
}
