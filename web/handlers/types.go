// Package handlers provides the HTTP handlers and middleware for the
// concierge question-answering API.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ErrorResponse is the standard error response format for the API.
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// AskRequest is the request format for POST /api/ask.
type AskRequest struct {
	Question string `json:"question"`
}

// StatsResponse is the response format for GET /api/stats.
type StatsResponse struct {
	TotalAgents   int `json:"total_agents"`
	Companies     int `json:"companies"`
	Nationalities int `json:"nationalities"`
}

// HealthResponse is the response format for GET /api/health.
type HealthResponse struct {
	Status        string `json:"status"`
	IndexedAgents int    `json:"indexed_agents"`
	Ollama        string `json:"ollama,omitempty"`
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers already sent, nothing to do but log.
		fmt.Printf("failed to encode JSON response: %v\n", err)
	}
}

// respondError writes an error response with a machine-readable code.
func respondError(w http.ResponseWriter, statusCode int, code, message string, err error) {
	errResp := ErrorResponse{
		Error: message,
		Code:  code,
	}
	if err != nil {
		errResp.Details = map[string]interface{}{
			"error": err.Error(),
		}
	}
	respondJSON(w, statusCode, errResp)
}
