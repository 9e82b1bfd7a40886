package catalog

// Priority ranks a supplement inside a therapy protocol.
type Priority string

const (
	Essential   Priority = "essential"
	Recommended Priority = "recommended"
	Optional    Priority = "optional"
)

type Supplement struct {
	Name     string   `json:"name"`
	Brands   string   `json:"brands"`
	Dosage   string   `json:"dosage"`
	Timing   string   `json:"timing"`
	Duration string   `json:"duration"`
	Priority Priority `json:"priority"`
}

// protocols lists supplements per therapy code in display order.
var protocols = map[string][]Supplement{
	"100": {
		{"Chromium Picolinate", "Solgar, Holland & Barrett", "200mcg", "With meals", "12 weeks", Essential},
		{"Alpha Lipoic Acid", "Solgar, Doctor's Best", "300mg", "Twice daily", "8 weeks", Essential},
		{"Cinnamon Extract", "Solgar, Nature's Way", "1000mg", "With meals", "Ongoing", Recommended},
		{"Gymnema Sylvestre", "Nature's Way, Swanson", "400mg", "Before meals", "8 weeks", Recommended},
	},
	"101": {
		{"Magnesium Glycinate", "Solgar, Nutri Advanced, Pure Encapsulations", "400mg", "30 minutes before bed", "8 weeks minimum", Essential},
		{"L-Theanine", "Solgar Theanine, NOW Foods, Jarrow Formulas", "200mg", "Evening", "8 weeks", Essential},
		{"Montmorency Cherry Extract", "CherryActive, Healthspan", "480mg", "Before bed", "8 weeks", Recommended},
		{"Ashwagandha KSM-66", "Nutri Advanced, Viridian", "600mg", "Evening", "8-12 weeks", Recommended},
		{"Valerian Root", "A.Vogel Dormeasan, Nytol Herbal", "450mg", "Before bed", "4-8 weeks", Optional},
	},
	"102": {
		{"Ashwagandha KSM-66", "Nutri Advanced, Viridian, Pukka", "600mg", "Morning", "8-12 weeks", Essential},
		{"B-Complex", `Solgar B-Complex "100", BioCare B Complex`, "1 capsule", "Morning with food", "Ongoing", Essential},
		{"Omega-3 EPA/DHA", "Nordic Naturals, Bare Biology", "2000mg", "With meals", "Ongoing", Recommended},
		{"Rhodiola Rosea", "Viridian, Solgar", "400mg", "Morning", "8 weeks", Recommended},
		{"Vitamin D3", "Better You DLux, Nutri Advanced D3 Drops", "2000IU", "Morning", "Ongoing", Optional},
	},
	"103": {
		{"L-Theanine", "Solgar, NOW Foods, Jarrow", "200mg twice daily", "Morning and evening", "8 weeks", Essential},
		{"Passionflower", "A.Vogel Passiflora, Schwabe Pharma", "350mg", "Twice daily", "6-8 weeks", Essential},
		{"Magnesium Taurate", "Cardiovascular Research, Douglas Labs", "400mg", "Evening", "Ongoing", Recommended},
		{"Lemon Balm", "A.Vogel, Viridian", "600mg", "Evening", "8 weeks", Recommended},
	},
	"104": {
		{"Glycine", "Solgar, Pure Encapsulations", "3g", "Before bed", "8 weeks", Essential},
		{"Magnesium Threonate", "Life Extension, NOW Foods", "2g", "Before bed", "Ongoing", Essential},
		{"L-Tryptophan", "Solgar, NOW Foods", "500mg", "Evening", "8 weeks", Recommended},
	},
	"201": {
		{"N-Acetyl Cysteine (NAC)", "Solgar, NOW Foods", "600mg twice daily", "Morning and evening", "8 weeks", Essential},
		{"Alpha Lipoic Acid", "Solgar, Doctor's Best", "300mg", "With meals", "8 weeks", Recommended},
		{"Cranberry Extract", "Nature's Way, Solgar", "500mg", "Daily", "Ongoing", Recommended},
	},
	"202": {
		{"Astragalus", "Nature's Way, Solgar", "500mg twice daily", "Morning and evening", "8-12 weeks", Essential},
		{"Coenzyme Q10", "Pharma Nord, Solgar", "200mg", "With meals", "12 weeks", Essential},
		{"Milk Thistle", "A.Vogel, Solgar", "300mg", "Daily", "8 weeks", Recommended},
	},
	"203": {
		{"D-Mannose", "Sweet Cures, NOW Foods", "2g", "Daily", "8 weeks", Essential},
		{"Pumpkin Seed Extract", "Solgar, Nature's Way", "500mg", "Daily", "8 weeks", Recommended},
		{"Quercetin", "Solgar, Jarrow", "500mg", "Twice daily", "8 weeks", Recommended},
	},
	"204": {
		{"Saw Palmetto", "A.Vogel Prostasan, Solgar", "320mg", "Daily", "12 weeks", Essential},
		{"Beta-Sitosterol", "Nature's Way, Swanson", "130mg", "Daily", "12 weeks", Essential},
		{"Zinc", "Solgar, BioCare", "15mg", "With meals", "Ongoing", Recommended},
	},
	"301": {
		{"CoQ10 Ubiquinol", "Pharma Nord BioActive Q10, Solgar Ubiquinol", "100mg twice daily", "With meals", "12 weeks minimum", Essential},
		{"Hawthorn Berry", "A.Vogel Crataegus, Nature's Way", "500mg", "Twice daily", "8-12 weeks", Essential},
		{"L-Carnitine", "Solgar, NOW Foods", "2000mg", "Morning", "8 weeks", Recommended},
		{"Magnesium Citrate", "Solgar, Nutri Advanced", "400mg", "Evening", "Ongoing", Recommended},
		{"Vitamin K2 MK-7", "Nutri Advanced, Solgar", "100mcg", "With meals", "Ongoing", Optional},
	},
	"302": {
		{"Beetroot Extract", "Beet It Sport, Love Beets", "500mg", "Morning", "8 weeks", Essential},
		{"Aged Garlic Extract", "Kyolic, Quest Kyolic", "600mg", "Daily with meals", "12 weeks", Essential},
		{"Olive Leaf Extract", "Comvita, Solgar", "500mg", "Daily", "8 weeks", Recommended},
		{"Hibiscus Extract", "Swanson, Nature's Way", "500mg", "Daily", "8 weeks", Optional},
	},
	"303": {
		{"Ginkgo Biloba", "A.Vogel, Solgar", "120mg", "Twice daily", "8 weeks", Essential},
		{"Horse Chestnut", "A.Vogel Venaforce, Nature's Way", "300mg", "Twice daily", "8 weeks", Essential},
		{"Pine Bark Extract", "Solgar, Lamberts", "100mg", "Daily", "8 weeks", Recommended},
	},
	"304": {
		{"L-Carnitine Tartrate", "MyProtein, NOW Foods", "2g", "Pre-exercise", "8 weeks", Essential},
		{"D-Ribose", "Life Extension, NOW Foods", "5g", "Daily", "8 weeks", Recommended},
		{"Taurine", "Solgar, NOW Foods", "2g", "Daily", "Ongoing", Recommended},
	},
	"401": {
		{"Montmorency Cherry Extract", "CherryActive, Healthspan", "480mg", "Daily", "8 weeks minimum", Essential},
		{"Vitamin C", "Solgar Ester-C, BioCare", "500mg", "Daily", "Ongoing", Essential},
		{"Celery Seed Extract", "Nature's Way, Swanson", "150mg", "Twice daily", "6-8 weeks", Recommended},
		{"Nettle Leaf", "A.Vogel Urtica, Solgar", "300mg", "Daily", "8 weeks", Optional},
	},
	"402": {
		{"Glucosamine Sulfate 2KCl", "Solgar, Seven Seas JointCare", "1500mg", "Daily with food", "12 weeks minimum", Essential},
		{"Chondroitin Sulfate", "Solgar, Holland & Barrett", "1200mg", "Daily with glucosamine", "12 weeks minimum", Essential},
		{"MSM", "Solgar, Doctor's Best", "2000mg", "Daily", "8 weeks", Recommended},
		{"Boswellia Serrata", "Solgar, Nutri Advanced", "400mg", "Twice daily", "8 weeks", Recommended},
		{"Turmeric with Black Pepper", "Solgar Full Spectrum Curcumin", "500mg", "Twice daily with meals", "Ongoing", Optional},
	},
	"403": {
		{"Collagen Type II", "Solgar, NOW Foods", "40mg", "Daily", "12 weeks", Essential},
		{"Hyaluronic Acid", "Solgar, Doctor's Best", "100mg", "Daily", "8 weeks", Essential},
		{"Green-Lipped Mussel", "Healthspan, Nutri Advanced", "500mg", "Daily", "8 weeks", Recommended},
	},
	"501": {
		{"Vitamin C", "Solgar Ester-C, BioCare", "1000mg", "Twice daily", "8 weeks", Essential},
		{"Zinc", "Solgar, BioCare", "25mg", "Daily with food", "8 weeks", Essential},
		{"L-Arginine", "Solgar, NOW Foods", "3g", "Daily", "8 weeks", Recommended},
		{"Grape Seed Extract", "Solgar, Viridian", "100mg", "Daily", "8 weeks", Optional},
	},
	"502": {
		{"Rutin", "Solgar, NOW Foods", "500mg", "Daily", "8 weeks", Essential},
		{"Diosmin/Hesperidin", "Lamberts, Life Extension", "900mg/100mg", "Daily", "8 weeks", Essential},
		{"Butcher's Broom", "Nature's Way, Swanson", "300mg", "Daily", "8 weeks", Recommended},
	},
	"601": {
		{"Multi-Strain Probiotic", "Bio-Kult Advanced, Optibac", "14 billion CFU", "Morning before food", "8 weeks", Essential},
		{"Digestive Enzymes", "Solgar, NOW Super Enzymes", "1 capsule", "With meals", "As needed", Essential},
		{"L-Glutamine", "Solgar, Pure Encapsulations", "5g", "Empty stomach", "8 weeks", Recommended},
		{"Slippery Elm", "Nature's Way, Solgar", "400mg", "Before meals", "4-6 weeks", Optional},
	},
	"602": {
		{"B12 Methylcobalamin", "Solgar, Better You B12", "1000mcg", "Morning sublingual", "Ongoing", Essential},
		{"Iron Bisglycinate", "Solgar Gentle Iron, Floradix", "25mg", "With vitamin C", "As per blood tests", Essential},
		{"Rhodiola Rosea", "Viridian, Solgar", "400mg", "Morning", "8 weeks", Recommended},
		{"Acetyl-L-Carnitine", "Solgar, NOW Foods", "1000mg", "Morning", "8 weeks", Recommended},
	},
	"703": {
		{"Collagen Peptides", "Vital Proteins, Solgar", "10g", "Daily", "12 weeks", Essential},
		{"Biotin", "Solgar, Holland & Barrett", "10mg", "Daily", "Ongoing", Essential},
		{"Evening Primrose Oil", "Efamol, Viridian", "1000mg", "Daily", "8 weeks", Recommended},
		{"Silica", "Solgar, BioSil", "10mg", "Daily", "8 weeks", Optional},
	},
	"801": {
		{"Multivitamin/Mineral", "Nutri Advanced Multi Essentials, Solgar", "1 daily", "With breakfast", "Ongoing", Essential},
		{"Omega-3 EPA/DHA", "Nordic Naturals, Bare Biology", "2000mg", "With meals", "Ongoing", Essential},
		{"Milk Thistle Extract", "Solgar, A.Vogel", "300mg", "Daily", "8 weeks", Recommended},
		{"NAC", "Solgar, NOW Foods", "600mg", "Daily", "8 weeks", Recommended},
		{"Vitamin D3", "Better You, Nutri Advanced", "2000IU", "Morning", "Ongoing", Optional},
	},
	"802": {
		{"Phosphatidylserine", "Solgar, NOW Foods", "300mg", "Evening", "8 weeks", Essential},
		{"Lemon Balm", "A.Vogel, Viridian", "600mg", "Evening", "8 weeks", Essential},
		{"Magnesium Complex", "Nutri Advanced, BioCare", "400mg", "Evening", "Ongoing", Recommended},
	},
}

// Supplements returns the protocol for a therapy code, or nil on a miss.
func Supplements(code string) []Supplement {
	list, ok := protocols[code]
	if !ok {
		return nil
	}
	return append([]Supplement(nil), list...)
}

// GeneralWellness is the fallback pair used when a selection comes back empty.
func GeneralWellness() []Supplement {
	return []Supplement{
		{"Multivitamin/Mineral", "Nutri Advanced Multi Essentials, Solgar", "1 daily", "With breakfast", "Ongoing", Essential},
		{"Omega-3 EPA/DHA", "Nordic Naturals, Bare Biology", "1000mg", "With meals", "Ongoing", Recommended},
	}
}
