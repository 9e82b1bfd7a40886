package recommend

import (
	"strings"

	"wellness-agent/internal/catalog"
)

// MaxSupplements caps every selection.
const MaxSupplements = 5

type SelectedSupplement struct {
	catalog.Supplement
	TherapyCode string `json:"therapy_code,omitempty"`
	TherapyName string `json:"therapy_name,omitempty"`
	Reason      string `json:"reason"`
}

// override force-includes supplements whose name contains one of names
// when the lifestyle note satisfies when.
type override struct {
	when  func(lifestyle string) bool
	names []string
}

var lifestyleOverrides = []override{
	{
		when: func(l string) bool {
			return strings.Contains(l, "sleep") && strings.Contains(l, "poor")
		},
		names: []string{"magnesium", "l-theanine", "cherry"},
	},
	{
		when: func(l string) bool {
			return strings.Contains(l, "stress") && strings.Contains(l, "high")
		},
		names: []string{"ashwagandha", "b-complex", "rhodiola"},
	},
	{
		when: func(l string) bool {
			return strings.Contains(l, "frequent digestive") || strings.Contains(l, "chronic digestive")
		},
		names: []string{"probiotic", "glutamine", "digestive"},
	},
}

type SupplementSelector struct {
	max       int
	overrides []override
	protocol  func(code string) []catalog.Supplement
}

func NewSupplementSelector() *SupplementSelector {
	return &SupplementSelector{
		max:       MaxSupplements,
		overrides: lifestyleOverrides,
		protocol:  catalog.Supplements,
	}
}

// Select walks the ranked therapies in order and returns at most five
// supplements with no repeated names. Severity does not widen any tier.
func (s *SupplementSelector) Select(recs []Recommendation, lifestyle string, severity int) []SelectedSupplement {
	lifestyle = strings.ToLower(lifestyle)
	var forced []override
	for _, o := range s.overrides {
		if o.when(lifestyle) {
			forced = append(forced, o)
		}
	}

	selected := []SelectedSupplement{}
	seen := map[string]bool{}

walk:
	for _, rec := range recs {
		for _, sup := range s.protocol(rec.Therapy.Code) {
			if len(selected) >= s.max {
				break walk
			}
			key := strings.ToLower(sup.Name)
			if seen[key] {
				continue
			}
			if !tierAllows(rec.Rank, sup.Priority) && !isForced(key, forced) {
				continue
			}
			seen[key] = true
			selected = append(selected, SelectedSupplement{
				Supplement:  sup,
				TherapyCode: rec.Therapy.Code,
				TherapyName: rec.Therapy.Name,
				Reason:      reasonFor(rec.Rank),
			})
		}
	}

	if len(selected) == 0 {
		for i, sup := range catalog.GeneralWellness() {
			reason := "General wellness support"
			if i > 0 {
				reason = "Anti-inflammatory support"
			}
			selected = append(selected, SelectedSupplement{Supplement: sup, Reason: reason})
		}
	}
	return selected
}

func tierAllows(rank Rank, p catalog.Priority) bool {
	switch rank {
	case RankPrimary, RankDefault:
		return p == catalog.Essential || p == catalog.Recommended
	default:
		return p == catalog.Essential
	}
}

func isForced(name string, forced []override) bool {
	for _, o := range forced {
		for _, n := range o.names {
			if strings.Contains(name, n) {
				return true
			}
		}
	}
	return false
}

func reasonFor(rank Rank) string {
	switch rank {
	case RankPrimary, RankDefault:
		return "Primary therapy support"
	case RankSecondary:
		return "Secondary therapy support"
	default:
		return "Adjunct therapy support"
	}
}
