package models

// DiseasePrediction is the classifier's verdict for an uploaded leaf image.
type DiseasePrediction struct {
	PredictedDisease string  `json:"predicted_disease"`
	ConfidenceScore  float64 `json:"confidence_score"`
}

// MedicineInfo describes a single recommended treatment product.
type MedicineInfo struct {
	Name                       string `json:"name"`
	TypicalDosageOrApplication string `json:"typical_dosage_or_application"`
	Notes                      string `json:"notes"`
}

// DiseaseInfo is the structured treatment payload returned by the advisory model.
// The schema is enforced on the response: a payload missing any required field is
// rejected rather than passed through.
type DiseaseInfo struct {
	Medicines   []MedicineInfo `json:"medicines"`
	Precautions []string       `json:"precautions"`
	Causes      []string       `json:"causes"`
	Summary     string         `json:"summary"`
	Disclaimer  string         `json:"disclaimer"`
}

// DetectionResponse is the full body returned by POST /detect_disease.
type DetectionResponse struct {
	DiseaseInfo      DiseasePrediction `json:"disease_info"`
	TreatmentDetails DiseaseInfo       `json:"treatment_details"`
}
