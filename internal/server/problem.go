package server

import (
	"encoding/json"
	"net/http"
)

// Problem type URIs for RFC 7807 responses.
const (
	ProblemTypeNotFound     = "https://driftscope.dev/problems/not-found"
	ProblemTypeBadRequest   = "https://driftscope.dev/problems/bad-request"
	ProblemTypeInternal     = "https://driftscope.dev/problems/internal-error"
	ProblemTypeUnauthorized = "https://driftscope.dev/problems/unauthorized"
	ProblemTypeForbidden    = "https://driftscope.dev/problems/forbidden"
	ProblemTypeRateLimited  = "https://driftscope.dev/problems/rate-limited"
	ProblemTypeConflict     = "https://driftscope.dev/problems/conflict"
)

// Problem is an RFC 7807 Problem Details document.
type Problem struct {
	Type     string `json:"type" example:"https://driftscope.dev/problems/bad-request"`
	Title    string `json:"title" example:"Bad Request"`
	Status   int    `json:"status" example:"400"`
	Detail   string `json:"detail,omitempty" example:"shift must be >= 0"`
	Instance string `json:"instance,omitempty" example:"/api/v1/drift/series"`
}

// WriteProblem writes p with the problem+json media type.
func WriteProblem(w http.ResponseWriter, p Problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// problem derives the title from the status code and writes the response.
func problem(w http.ResponseWriter, typeURI string, status int, detail, instance string) {
	WriteProblem(w, Problem{
		Type:     typeURI,
		Title:    http.StatusText(status),
		Status:   status,
		Detail:   detail,
		Instance: instance,
	})
}

// NotFound responds 404 with a typed problem body.
func NotFound(w http.ResponseWriter, detail, instance string) {
	problem(w, ProblemTypeNotFound, http.StatusNotFound, detail, instance)
}

// BadRequest responds 400 with a typed problem body.
func BadRequest(w http.ResponseWriter, detail, instance string) {
	problem(w, ProblemTypeBadRequest, http.StatusBadRequest, detail, instance)
}

// InternalError responds 500 with a typed problem body.
func InternalError(w http.ResponseWriter, detail, instance string) {
	problem(w, ProblemTypeInternal, http.StatusInternalServerError, detail, instance)
}

// RateLimited responds 429 with a typed problem body.
func RateLimited(w http.ResponseWriter, detail, instance string) {
	problem(w, ProblemTypeRateLimited, http.StatusTooManyRequests, detail, instance)
}
