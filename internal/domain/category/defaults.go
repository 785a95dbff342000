package category

// Specialty ids of the built-in table.
const (
	SpecialtyEmergency        int64 = 1
	SpecialtyCardiology       int64 = 2
	SpecialtyNeurology        int64 = 3
	SpecialtyPulmonology      int64 = 4
	SpecialtyGastroenterology int64 = 5
	SpecialtyDermatology      int64 = 6
	SpecialtyInfectious       int64 = 7
	SpecialtyGynecology       int64 = 8
	SpecialtyInternalMedicine int64 = 9
	SpecialtyGeneralPractice  int64 = 10
)

// DefaultDefinitions returns the built-in table. Keywords are normalized Portuguese
// terms; spellings with and without cedilla are both listed because normalization
// does not fold accents.
func DefaultDefinitions() []Definition {
	return []Definition{
		{
			Name:        "Emergency Medicine",
			SpecialtyID: SpecialtyEmergency,
			Keywords: []string{
				"parada cardiaca", "desmaio prolongado", "convulsao", "sangramento incontrolavel",
				"overdose", "queimadura grave", "falta de ar severa", "trauma craniano",
			},
		},
		{
			Name:        "Cardiology",
			SpecialtyID: SpecialtyCardiology,
			Keywords: []string{
				"dor no peito", "dor precordial", "palpitacao", "taquicardia", "desmaio",
				"inchaco nas pernas", "inchaço nas pernas",
			},
			Hints: []HintRule{
				{AllOf: []string{"dor no peito", "irradia para o braco"}, Diagnosis: "Possible acute myocardial infarction"},
				{AllOf: []string{"dor no peito", "irradia para o braço"}, Diagnosis: "Possible acute myocardial infarction"},
				{AllOf: []string{"dor no peito", "piora com esforco"}, Diagnosis: "Possible stable angina"},
				{AllOf: []string{"palpitacao"}, Diagnosis: "Possible arrhythmia"},
				{AllOf: []string{"inchaco nas pernas"}, Diagnosis: "Possible heart failure"},
			},
		},
		{
			Name:        "Neurology",
			SpecialtyID: SpecialtyNeurology,
			Keywords: []string{
				"cefaleia", "dor de cabeca intensa", "convulsao", "perda de consciencia",
				"confusao mental", "visao dupla", "fraqueza muscular", "formigamento",
			},
			Hints: []HintRule{
				{AllOf: []string{"dor de cabeca intensa", "repentina"}, Diagnosis: "Possible subarachnoid haemorrhage"},
				{AllOf: []string{"vomito", "fotofobia"}, Diagnosis: "Possible migraine"},
				{AllOf: []string{"fraqueza muscular", "formigamento"}, Diagnosis: "Possible stroke: check face, arm and speech"},
			},
		},
		{
			Name:        "Pulmonology",
			SpecialtyID: SpecialtyPulmonology,
			Keywords: []string{
				"falta de ar", "dispneia", "tosse com sangue", "sibilo", "dor toracica ao respirar",
			},
			Hints: []HintRule{
				{AllOf: []string{"falta de ar", "esforco"}, Diagnosis: "Possible COPD or asthma"},
				{AllOf: []string{"falta de ar", "repentina"}, Diagnosis: "Possible pulmonary embolism"},
				{AllOf: []string{"sibilo"}, Diagnosis: "Possible asthma"},
			},
		},
		{
			Name:        "Gastroenterology",
			SpecialtyID: SpecialtyGastroenterology,
			Keywords: []string{
				"dor abdominal", "vomito", "diarreia", "sangue nas fezes", "ictericia", "azia",
			},
			Hints: []HintRule{
				{AllOf: []string{"dor abdominal", "quadrante superior direito"}, Diagnosis: "Possible cholecystitis"},
				{AllOf: []string{"dor abdominal", "rebote"}, Diagnosis: "Possible appendicitis"},
				{AllOf: []string{"vomito", "diarreia"}, Diagnosis: "Possible gastroenteritis"},
			},
		},
		{
			Name:        "Dermatology",
			SpecialtyID: SpecialtyDermatology,
			Keywords: []string{
				"erupcao cutanea", "prurido", "lesao na pele", "vermelhidao", "bolhas", "descamacao",
			},
			Hints: []HintRule{
				{AllOf: []string{"bolhas extensas"}, Diagnosis: "Possible Stevens-Johnson syndrome"},
				{AllOf: []string{"prurido", "vermelhidao"}, Diagnosis: "Possible contact dermatitis"},
			},
		},
		{
			Name:        "Infectious Diseases",
			SpecialtyID: SpecialtyInfectious,
			Keywords: []string{
				"febre alta", "calafrios", "sudorese noturna", "linfonodos aumentados", "viagem recente",
			},
			Hints: []HintRule{
				{AllOf: []string{"febre alta", "confusao"}, Diagnosis: "Possible sepsis"},
				{AllOf: []string{"febre alta", "taquicardia"}, Diagnosis: "Possible sepsis"},
				{AllOf: []string{"viagem recente", "febre"}, Diagnosis: "Possible travel-related infection (dengue, malaria)"},
			},
		},
		{
			Name:        "Gynecology and Obstetrics",
			SpecialtyID: SpecialtyGynecology,
			Keywords: []string{
				"sangramento vaginal", "dor pelvica", "corrimento", "atraso menstrual", "gravidez", "tpm intensa",
			},
			Hints: []HintRule{
				{AllOf: []string{"atraso menstrual", "sangramento vaginal"}, Diagnosis: "Possible miscarriage or ectopic pregnancy"},
				{AllOf: []string{"dor pelvica", "corrimento"}, Diagnosis: "Possible pelvic inflammatory disease"},
			},
		},
		{
			Name:        "Internal Medicine",
			SpecialtyID: SpecialtyInternalMedicine,
			Keywords: []string{
				"febre", "calafrios", "perda de peso", "astenia", "mal estar", "cansaco", "cansaço",
			},
			Hints: []HintRule{
				{AllOf: []string{"febre"}, NoneOf: []string{"febre alta"}, Diagnosis: "Possible viral syndrome"},
				{AllOf: []string{"perda de peso", "astenia"}, Diagnosis: "Unexplained weight loss: investigate chronic disease"},
			},
		},
		{
			Name:        "General Practice",
			SpecialtyID: SpecialtyGeneralPractice,
			Fallback:    true,
		},
	}
}

// DefaultTable returns the built-in classification table.
func DefaultTable() *Table {
	t, err := NewTable(DefaultDefinitions())
	if err != nil {
		panic("category: invalid default table: " + err.Error())
	}
	return t
}
