package chi

// ErrorResponseCode is a machine-readable error code.
type ErrorResponseCode string

// Error codes.
const (
	ErrorResponseCodeBadRequest         ErrorResponseCode = "bad_request"
	ErrorResponseCodeUnauthorized       ErrorResponseCode = "unauthorized"
	ErrorResponseCodeValidationFailed   ErrorResponseCode = "validation_failed"
	ErrorResponseCodeNotFound           ErrorResponseCode = "not_found"
	ErrorResponseCodeRateLimited        ErrorResponseCode = "rate_limited"
	ErrorResponseCodeStorageUnavailable ErrorResponseCode = "storage_unavailable"
	ErrorResponseCodeInternalError      ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// TriageRequest is the body of POST /v1/triage.
type TriageRequest struct {
	Symptoms string `json:"symptoms"`
	History  string `json:"history,omitempty"`
	Age      int    `json:"age,omitempty"`
}

// TriageParams are the query parameters of POST /v1/triage.
type TriageParams struct {
	EvidenceLimit *int `form:"evidence_limit,omitempty" json:"evidence_limit,omitempty"`
}

// EvidenceItem is one supporting protocol excerpt.
type EvidenceItem struct {
	Text       string `json:"text"`
	Confidence string `json:"confidence"`
	Source     string `json:"source"`
	Title      string `json:"title,omitempty"`
}

// TriageResponse is a triage report.
type TriageResponse struct {
	ID             string         `json:"id"`
	Category       string         `json:"category"`
	SpecialtyID    int64          `json:"specialty_id"`
	Urgency        string         `json:"urgency"`
	Alerts         []string       `json:"alerts"`
	DiagnosesHint  []string       `json:"diagnoses_hint"`
	Evidence       []EvidenceItem `json:"evidence"`
	Sources        []string       `json:"sources"`
	Recommendation string         `json:"recommendation"`
	Outcome        string         `json:"outcome"`
	Narrative      string         `json:"narrative"`
	Disclaimer     string         `json:"disclaimer"`
}

// Category is one entry of GET /v1/categories.
type Category struct {
	Name         string `json:"name"`
	SpecialtyID  int64  `json:"specialty_id"`
	KeywordCount int    `json:"keyword_count"`
	HintCount    int    `json:"hint_count"`
	Fallback     bool   `json:"fallback"`
	Documents    int    `json:"documents"`
}

// CategoryListResponse is the body of GET /v1/categories.
type CategoryListResponse struct {
	Items []Category `json:"items"`
	Count int        `json:"count"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
