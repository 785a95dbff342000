package urgency

// Alert texts shared by several flags.
const (
	alertCallEmergency = "CALL EMERGENCY SERVICES IMMEDIATELY (SAMU 192)"
	alertCardiacEvent  = "Possible acute cardiac event: seek emergency care now"
	alertSepsisRisk    = "Urgent hospitalization: risk of sepsis"
	alertInfarction    = "Risk of acute myocardial infarction: maximum priority"
	alertPediatricEmer = "Child in respiratory or neurological distress: emergency evaluation"
)

// DefaultGeneralFlags returns red flags applied at every age. Keywords are normalized
// Portuguese, matched as substrings.
func DefaultGeneralFlags() []Flag {
	return []Flag{
		{Keyword: "parada cardiaca", Alert: alertCallEmergency},
		{Keyword: "desmaio prolongado", Alert: alertCallEmergency},
		{Keyword: "convulsao", Alert: alertCallEmergency},
		{Keyword: "sangramento incontrolavel", Alert: alertCallEmergency},
		{Keyword: "overdose", Alert: alertCallEmergency},
		{Keyword: "queimadura grave", Alert: alertCallEmergency},
		{Keyword: "trauma craniano", Alert: alertCallEmergency},
		{Keyword: "dor no peito", Alert: alertCardiacEvent},
		{Keyword: "dor precordial", Alert: alertCardiacEvent},
		{Keyword: "irradia para o braco", Alert: alertInfarction},
		{Keyword: "irradia para o braço", Alert: alertInfarction},
		{Keyword: "falta de ar severa", Alert: "Severe respiratory distress: emergency evaluation"},
		{Keyword: "tosse com sangue", Alert: "Coughing blood: urgent evaluation"},
		{Keyword: "perda de consciencia", Alert: "Loss of consciousness: emergency evaluation"},
		{Keyword: "sangue nas fezes", Alert: "Possible gastrointestinal bleeding: urgent evaluation"},
		{Keyword: "pele descamando", Alert: alertSepsisRisk},
		{Keyword: "bolhas extensas", Alert: alertSepsisRisk},
	}
}

// DefaultPediatricFlags returns red flags applied only to pediatric ages.
func DefaultPediatricFlags() []Flag {
	return []Flag{
		{Keyword: "dor no peito", Alert: "Chest pain in a child: urgent pediatric cardiology evaluation"},
		{Keyword: "febre alta", Alert: "High fever in a child: pediatric evaluation within hours"},
		{Keyword: "convulsao", Alert: "Seizure in a child: pediatric emergency"},
		{Keyword: "falta de ar", Alert: alertPediatricEmer},
		{Keyword: "letargia", Alert: alertPediatricEmer},
		{Keyword: "rigidez de nuca", Alert: "Neck stiffness in a child: rule out meningitis"},
		{Keyword: "manchas roxas", Alert: "Purpuric spots in a child: rule out meningococcal disease"},
		{Keyword: "desidratacao", Alert: "Risk of dehydration in a child"},
	}
}

// DefaultAdvisories returns history-driven alerts that do not change urgency.
func DefaultAdvisories() []Flag {
	return []Flag{
		{Keyword: "hipertensao", Alert: "Patient with cardiovascular risk factors"},
		{Keyword: "colesterol", Alert: "Patient with cardiovascular risk factors"},
		{Keyword: "diabetes", Alert: "Patient with cardiovascular risk factors"},
		{Keyword: "acidente vascular cerebral", Alert: "History of stroke: increased risk"},
		{Keyword: "gravidez", Alert: "Pregnancy reported: consider obstetric evaluation"},
	}
}
