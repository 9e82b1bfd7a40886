package catalog

// DefaultCode is the therapy recommended when nothing else scores.
const DefaultCode = "801"

// Therapy is an immutable protocol definition.
type Therapy struct {
	Code           string   `json:"code"`
	Name           string   `json:"name"`
	Keywords       []string `json:"keywords"`
	SessionMinutes int      `json:"session_minutes"`
	Frequency      string   `json:"frequency"`
	CourseLength   string   `json:"course_length"`
	TotalSessions  string   `json:"total_sessions"`
}

// therapies is kept in ascending code order; selection ties resolve in this order.
var therapies = []Therapy{
	{
		Code:           "100",
		Name:           "Blood Sugar Balance Therapy",
		Keywords:       []string{"diabetes", "blood sugar", "insulin", "glucose"},
		SessionMinutes: 45,
		Frequency:      "3 sessions weekly initially, then 2",
		CourseLength:   "10-12 weeks",
		TotalSessions:  "25-36 sessions",
	},
	{
		Code:           "101",
		Name:           "Deep Sleep Renewal Therapy",
		Keywords:       []string{"insomnia", "sleep", "awakening", "nighttime", "can't sleep"},
		SessionMinutes: 45,
		Frequency:      "2-3 sessions per week",
		CourseLength:   "8 weeks minimum",
		TotalSessions:  "16-24 sessions",
	},
	{
		Code:           "102",
		Name:           "Stress Relief Therapy",
		Keywords:       []string{"stress", "burnout", "tension", "overwhelm", "pressure"},
		SessionMinutes: 35,
		Frequency:      "1-2 sessions per week",
		CourseLength:   "8 weeks",
		TotalSessions:  "8-16 sessions",
	},
	{
		Code:           "103",
		Name:           "Relaxation & Calm Therapy",
		Keywords:       []string{"anxiety", "nervous", "restless", "panic", "worried"},
		SessionMinutes: 40,
		Frequency:      "2 sessions per week",
		CourseLength:   "8 weeks",
		TotalSessions:  "16 sessions",
	},
	{
		Code:           "104",
		Name:           "Sleep Quality Therapy",
		Keywords:       []string{"fragmented", "early wake", "sleep quality", "tired"},
		SessionMinutes: 40,
		Frequency:      "2-3 sessions per week",
		CourseLength:   "6-8 weeks",
		TotalSessions:  "12-24 sessions",
	},
	{
		Code:           "201",
		Name:           "Kidney Vitality Therapy",
		Keywords:       []string{"kidney", "fluid", "oedema", "retention", "swelling"},
		SessionMinutes: 40,
		Frequency:      "2 sessions weekly",
		CourseLength:   "8 weeks minimum",
		TotalSessions:  "16 sessions",
	},
	{
		Code:           "202",
		Name:           "Kidney Support Therapy",
		Keywords:       []string{"proteinuria", "kidney function", "renal"},
		SessionMinutes: 40,
		Frequency:      "2-3 sessions weekly",
		CourseLength:   "8 weeks",
		TotalSessions:  "16-24 sessions",
	},
	{
		Code:           "203",
		Name:           "Bladder Comfort Therapy",
		Keywords:       []string{"bladder", "urgency", "frequency", "urinary", "urination"},
		SessionMinutes: 35,
		Frequency:      "2 sessions weekly",
		CourseLength:   "6-8 weeks",
		TotalSessions:  "12-16 sessions",
	},
	{
		Code:           "204",
		Name:           "Urinary Flow Therapy",
		Keywords:       []string{"weak stream", "prostate", "bph", "hesitancy", "dribbling"},
		SessionMinutes: 40,
		Frequency:      "2-3 sessions weekly",
		CourseLength:   "8-10 weeks",
		TotalSessions:  "16-30 sessions",
	},
	{
		Code:           "301",
		Name:           "Heart Health Therapy",
		Keywords:       []string{"heart", "cardiac", "coronary", "arrhythmia", "chest"},
		SessionMinutes: 45,
		Frequency:      "2 sessions weekly",
		CourseLength:   "10-12 weeks",
		TotalSessions:  "20-24 sessions",
	},
	{
		Code:           "302",
		Name:           "Blood Pressure Balance Therapy",
		Keywords:       []string{"hypertension", "blood pressure", "bp", "high pressure"},
		SessionMinutes: 40,
		Frequency:      "3 sessions weekly initially, then 2",
		CourseLength:   "10 weeks",
		TotalSessions:  "25-30 sessions",
	},
	{
		Code:           "303",
		Name:           "Circulation Boost Therapy",
		Keywords:       []string{"circulation", "cold hands", "numbness", "tingling"},
		SessionMinutes: 35,
		Frequency:      "2-3 sessions weekly",
		CourseLength:   "8 weeks",
		TotalSessions:  "16-24 sessions",
	},
	{
		Code:           "304",
		Name:           "Cardiovascular Vitality Therapy",
		Keywords:       []string{"endurance", "athletic", "metabolic", "performance"},
		SessionMinutes: 40,
		Frequency:      "2 sessions weekly",
		CourseLength:   "8 weeks",
		TotalSessions:  "16 sessions",
	},
	{
		Code:           "401",
		Name:           "Gout Relief Therapy",
		Keywords:       []string{"gout", "uric acid", "joint swelling", "toe pain"},
		SessionMinutes: 40,
		Frequency:      "Daily for acute (3-5 days), then 2 weekly",
		CourseLength:   "6-8 weeks",
		TotalSessions:  "15-20 sessions",
	},
	{
		Code:           "402",
		Name:           "ArthriComfort Therapy",
		Keywords:       []string{"arthritis", "joint pain", "stiffness", "morning stiff"},
		SessionMinutes: 40,
		Frequency:      "2-3 sessions weekly",
		CourseLength:   "6 weeks minimum",
		TotalSessions:  "12-18 sessions",
	},
	{
		Code:           "403",
		Name:           "Joint Mobility Therapy",
		Keywords:       []string{"mobility", "flexibility", "range motion", "movement"},
		SessionMinutes: 45,
		Frequency:      "3 sessions weekly for rehab, 2 for maintenance",
		CourseLength:   "8-12 weeks",
		TotalSessions:  "24-36 sessions",
	},
	{
		Code:           "501",
		Name:           "Wound Healing Therapy",
		Keywords:       []string{"wound", "ulcer", "healing", "sore", "cut"},
		SessionMinutes: 45,
		Frequency:      "3-4 sessions weekly",
		CourseLength:   "12 weeks or until healed",
		TotalSessions:  "36-48 sessions",
	},
	{
		Code:           "502",
		Name:           "Vascular Health Therapy",
		Keywords:       []string{"vascular", "vein", "lymph", "atherosclerosis"},
		SessionMinutes: 40,
		Frequency:      "2-3 sessions weekly",
		CourseLength:   "10-12 weeks",
		TotalSessions:  "20-36 sessions",
	},
	{
		Code:           "601",
		Name:           "Digestive Balance Therapy",
		Keywords:       []string{"ibs", "constipation", "bloating", "digestive", "stomach"},
		SessionMinutes: 40,
		Frequency:      "2 sessions weekly",
		CourseLength:   "8 weeks",
		TotalSessions:  "16 sessions",
	},
	{
		Code:           "602",
		Name:           "Energy Boost Therapy",
		Keywords:       []string{"fatigue", "tired", "energy", "exhaustion", "weak"},
		SessionMinutes: 40,
		Frequency:      "2-3 sessions weekly",
		CourseLength:   "8 weeks",
		TotalSessions:  "16-24 sessions",
	},
	{
		Code:           "703",
		Name:           "Skin Health Therapy",
		Keywords:       []string{"skin", "eczema", "psoriasis", "dermatitis", "rash"},
		SessionMinutes: 40,
		Frequency:      "2 sessions weekly",
		CourseLength:   "8 weeks",
		TotalSessions:  "16 sessions",
	},
	{
		Code:           "801",
		Name:           "Total Wellness Package (Detoxification)",
		Keywords:       []string{"detox", "wellness", "general", "prevention"},
		SessionMinutes: 60,
		Frequency:      "1-2 sessions weekly",
		CourseLength:   "8-16 weeks",
		TotalSessions:  "8-32 sessions",
	},
	{
		Code:           "802",
		Name:           "Stress & Relaxation Package",
		Keywords:       []string{"comprehensive", "multiple", "overall"},
		SessionMinutes: 50,
		Frequency:      "1-2 sessions weekly",
		CourseLength:   "8-12 weeks",
		TotalSessions:  "8-24 sessions",
	},
}

var therapyIndex = func() map[string]int {
	idx := make(map[string]int, len(therapies))
	for i, t := range therapies {
		idx[t.Code] = i
	}
	return idx
}()

// Therapies returns every definition in catalog order.
func Therapies() []Therapy {
	out := make([]Therapy, len(therapies))
	for i, t := range therapies {
		out[i] = t.clone()
	}
	return out
}

// Lookup returns the therapy with the given code.
func Lookup(code string) (Therapy, bool) {
	i, ok := therapyIndex[code]
	if !ok {
		return Therapy{}, false
	}
	return therapies[i].clone(), true
}

// Default returns the general wellness package.
func Default() Therapy {
	t, _ := Lookup(DefaultCode)
	return t
}

func (t Therapy) clone() Therapy {
	t.Keywords = append([]string(nil), t.Keywords...)
	return t
}
