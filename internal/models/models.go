package models

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// MaxQueryLength caps the accepted query size in characters.
const MaxQueryLength = 4000

// AskRequest is the body of POST /v1/ask.
type AskRequest struct {
	Query string `json:"query"`
}

// Normalize trims surrounding whitespace from the query.
func (r *AskRequest) Normalize() {
	r.Query = strings.TrimSpace(r.Query)
}

// Validate rejects blank or oversized queries. Callers normalize first.
func (r *AskRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Query,
			validation.Required.Error("query must not be empty"),
			validation.Length(1, MaxQueryLength),
		),
	)
}

// ErrorResponse is the JSON error envelope for non-stream failures.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the error classification and message.
type ErrorDetail struct {
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// ToolStatus describes one tool for GET /v1/tools. Credentials are never
// echoed, only whether one is configured.
type ToolStatus struct {
	Name      string `json:"name"`
	Mode      string `json:"mode"`
	Available bool   `json:"available"`
	Engine    string `json:"engine,omitempty"`
}
