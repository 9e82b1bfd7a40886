package recommend

import (
	"math"
	"sort"
	"strings"

	"wellness-agent/internal/catalog"
)

// Rank tags a recommendation's place in the result.
type Rank string

const (
	RankPrimary   Rank = "primary"
	RankSecondary Rank = "secondary"
	RankAdjunct   Rank = "adjunct"
	RankDefault   Rank = "default"
)

// Profile is the slice of an assessment the selectors read.
type Profile struct {
	PrimaryConcern string
	// Symptoms[0] is the primary concern; the rest are related symptoms.
	Symptoms       []string
	Lifestyle      string
	MedicalHistory string
	Severity       int
	Duration       string
}

type Recommendation struct {
	Therapy         catalog.Therapy `json:"therapy"`
	Score           int             `json:"score"`
	MatchedKeywords []string        `json:"matched_keywords"`
	Rank            Rank            `json:"rank"`
}

// Weights parameterises the scoring. The values are tunable, not load-bearing.
type Weights struct {
	PrimaryConcern     float64
	PrimaryBonus       float64
	SeverityMultiplier float64
	ChronicDuration    float64
	RelatedSymptom     float64
	Lifestyle          float64
	MedicalHistory     float64
	Comorbidity        float64
	MinimumScore       int
	SecondaryRatio     float64
	AdjunctRatio       float64
}

func DefaultWeights() Weights {
	return Weights{
		PrimaryConcern:     100,
		PrimaryBonus:       20,
		SeverityMultiplier: 2,
		ChronicDuration:    20,
		RelatedSymptom:     30,
		Lifestyle:          15,
		MedicalHistory:     25,
		Comorbidity:        40,
		MinimumScore:       50,
		SecondaryRatio:     0.7,
		AdjunctRatio:       0.5,
	}
}

const defaultSeverity = 5

type TherapySelector struct {
	weights   Weights
	match     Matcher
	therapies []catalog.Therapy
}

type SelectorOption func(*TherapySelector)

func WithWeights(w Weights) SelectorOption {
	return func(s *TherapySelector) { s.weights = w }
}

func WithMatcher(m Matcher) SelectorOption {
	return func(s *TherapySelector) { s.match = m }
}

func NewTherapySelector(opts ...SelectorOption) *TherapySelector {
	s := &TherapySelector{
		weights:   DefaultWeights(),
		match:     Contains,
		therapies: catalog.Therapies(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Select returns one to three ranked recommendations, or the default
// wellness therapy alone when the best score is under the minimum.
func (s *TherapySelector) Select(p Profile) []Recommendation {
	scored := s.Score(p)

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) == 0 || scored[0].Score < s.weights.MinimumScore {
		return []Recommendation{{
			Therapy:         catalog.Default(),
			MatchedKeywords: []string{},
			Rank:            RankDefault,
		}}
	}

	top := float64(scored[0].Score)
	out := []Recommendation{scored[0]}
	out[0].Rank = RankPrimary

	if len(scored) > 1 && float64(scored[1].Score) >= top*s.weights.SecondaryRatio {
		r := scored[1]
		r.Rank = RankSecondary
		out = append(out, r)
	}
	if len(scored) > 2 && float64(scored[2].Score) >= top*s.weights.AdjunctRatio {
		r := scored[2]
		r.Rank = RankAdjunct
		out = append(out, r)
	}
	return out
}

// Score computes the raw score of every therapy, in catalog order.
func (s *TherapySelector) Score(p Profile) []Recommendation {
	out := make([]Recommendation, 0, len(s.therapies))
	for _, t := range s.therapies {
		score, matched := s.scoreTherapy(t, p)
		out = append(out, Recommendation{
			Therapy:         t,
			Score:           int(math.Round(score)),
			MatchedKeywords: matched,
		})
	}
	return out
}

func (s *TherapySelector) scoreTherapy(t catalog.Therapy, p Profile) (float64, []string) {
	w := s.weights
	var score float64
	matched := []string{}
	seen := map[string]bool{}
	note := func(kw string) {
		if !seen[kw] {
			seen[kw] = true
			matched = append(matched, kw)
		}
	}

	primaryHits := 0
	for _, kw := range t.Keywords {
		if s.match(p.PrimaryConcern, kw) {
			score += w.PrimaryConcern + w.PrimaryBonus
			primaryHits++
			note(kw)
		}
	}

	if primaryHits > 0 {
		severity := p.Severity
		if severity <= 0 {
			severity = defaultSeverity
		}
		score *= 1 + (float64(severity)/5)*w.SeverityMultiplier

		if isChronic(p.Duration) {
			score += w.ChronicDuration
		}
	}

	for i, symptom := range p.Symptoms {
		if i == 0 || symptom == "" {
			continue
		}
		for _, kw := range t.Keywords {
			if s.match(symptom, kw) {
				score += w.RelatedSymptom
				note(kw)
			}
		}
	}

	lifestyle := strings.ToLower(p.Lifestyle)
	for _, kw := range t.Keywords {
		if !s.match(lifestyle, kw) {
			continue
		}
		score += w.Lifestyle
		note(kw)
		if strings.Contains(kw, "sleep") && strings.Contains(lifestyle, "poor") {
			score += w.Lifestyle * 2
		}
		if strings.Contains(kw, "stress") && strings.Contains(lifestyle, "high") {
			score += w.Lifestyle * 2
		}
	}

	for _, kw := range t.Keywords {
		if s.match(p.MedicalHistory, kw) {
			score += w.MedicalHistory
			note(kw)
		}
	}

	if len(matched) >= 3 {
		score += w.Comorbidity * float64(len(matched)-2)
	}
	return score, matched
}

func isChronic(duration string) bool {
	d := strings.ToLower(duration)
	return strings.Contains(d, "month") || strings.Contains(d, "year") || strings.Contains(d, "over")
}
