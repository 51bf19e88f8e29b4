package api

import (
	"encoding/json"
	"net/http"
)

// Problem is the RFC7807 body every non-2xx response carries: bad solve
// requests, unknown instance/job ids, and store failures all surface through
// it so clients can switch on Status without scraping detail strings.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeProblem(w http.ResponseWriter, status int, title, detail, instance string) {
	writeJSON(w, status, Problem{
		Type:     "about:blank",
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: instance,
	})
}

// writeNotFound is the 404 shape shared by the instance, job, and
// subscription lookups.
func writeNotFound(w http.ResponseWriter, title, instance string) {
	writeProblem(w, http.StatusNotFound, title, "", instance)
}
