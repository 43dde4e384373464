package caption

// CaptionRequest is the body accepted by POST /api/caption.
type CaptionRequest struct {
	Image string `json:"image"`
}

// CaptionResponse is the success body of POST /api/caption.
type CaptionResponse struct {
	Caption    string `json:"caption"`
	Confidence string `json:"confidence,omitempty"`
}

// ErrorResponse is the failure body of POST /api/caption.
type ErrorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	Environment string `json:"environment"`
	HasAPIToken bool   `json:"hasApiToken"`
}
