package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"vrpsolve/internal/model"
	"vrpsolve/internal/solomon"
	"vrpsolve/internal/store"
)

// InstancesHandler handles POST/GET /v1/instances
func (s *Server) InstancesHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var inst model.Instance
		if err := json.NewDecoder(r.Body).Decode(&inst); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
			return
		}
		if err := validateInstance(&inst); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid instance", err.Error(), r.URL.Path)
			return
		}
		created, err := s.Store.CreateInstance(r.Context(), inst)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Create instance failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	case http.MethodGet:
		cursor := r.URL.Query().Get("cursor")
		limit := 100
		if v := r.URL.Query().Get("limit"); v != "" {
			fmt.Sscanf(v, "%d", &limit)
		}
		items, next, err := s.Store.ListInstances(r.Context(), cursor, limit)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "List instances failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// ImportHandler handles POST /v1/instances/import with a raw Solomon-format
// body. The optional maxCustomers query parameter truncates the instance.
func (s *Server) ImportHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	maxCustomers := 0
	if v := r.URL.Query().Get("maxCustomers"); v != "" {
		fmt.Sscanf(v, "%d", &maxCustomers)
	}
	body := io.LimitReader(r.Body, 1<<20)
	inst, err := solomon.Parse(body, maxCustomers)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Solomon file", err.Error(), r.URL.Path)
		return
	}
	created, err := s.Store.CreateInstance(r.Context(), inst)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Create instance failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// InstanceByIDHandler handles GET/DELETE /v1/instances/{id} and
// GET /v1/instances/{id}/jobs.
func (s *Server) InstanceByIDHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/instances/")
	if rest == "" || strings.Contains(strings.TrimSuffix(rest, "/jobs"), "/") {
		writeNotFound(w, "Not Found", r.URL.Path)
		return
	}
	if id, ok := strings.CutSuffix(rest, "/jobs"); ok {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		cursor := r.URL.Query().Get("cursor")
		limit := 100
		if v := r.URL.Query().Get("limit"); v != "" {
			fmt.Sscanf(v, "%d", &limit)
		}
		items, next, err := s.Store.ListJobs(r.Context(), id, cursor, limit)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "List jobs failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
		return
	}
	switch r.Method {
	case http.MethodGet:
		inst, err := s.Store.GetInstance(r.Context(), rest)
		if errors.Is(err, store.ErrNotFound) {
			writeNotFound(w, "Instance not found", r.URL.Path)
			return
		}
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Get instance failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, inst)
	case http.MethodDelete:
		err := s.Store.DeleteInstance(r.Context(), rest)
		if errors.Is(err, store.ErrNotFound) {
			writeNotFound(w, "Instance not found", r.URL.Path)
			return
		}
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Delete instance failed", err.Error(), r.URL.Path)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// SolveHandler handles POST /v1/solve: creates a background job and returns
// 202 with the job record.
func (s *Server) SolveHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req model.SolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if err := validateSolveRequest(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid solve request", err.Error(), r.URL.Path)
		return
	}
	inst, err := s.Store.GetInstance(r.Context(), req.InstanceID)
	if errors.Is(err, store.ErrNotFound) {
		writeNotFound(w, "Instance not found", r.URL.Path)
		return
	}
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Get instance failed", err.Error(), r.URL.Path)
		return
	}
	job, err := s.Store.CreateJob(r.Context(), model.SolveJob{InstanceID: req.InstanceID, Request: req})
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Create job failed", err.Error(), r.URL.Path)
		return
	}
	go s.runJob(job, inst)
	writeJSON(w, http.StatusAccepted, job)
}

// JobByIDHandler handles GET /v1/jobs/{id} and the WebSocket stream at
// /v1/jobs/{id}/stream.
func (s *Server) JobByIDHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/jobs/")
	if id, ok := strings.CutSuffix(rest, "/stream"); ok {
		s.jobStream(w, r, id)
		return
	}
	if rest == "" || strings.Contains(rest, "/") {
		writeNotFound(w, "Not Found", r.URL.Path)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	job, err := s.Store.GetJob(r.Context(), rest)
	if errors.Is(err, store.ErrNotFound) {
		writeNotFound(w, "Job not found", r.URL.Path)
		return
	}
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Get job failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// SubscriptionsHandler handles POST/GET /v1/subscriptions
func (s *Server) SubscriptionsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req model.SubscriptionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
			return
		}
		if err := validateSubscription(&req); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid subscription", err.Error(), r.URL.Path)
			return
		}
		sub, err := s.Store.CreateSubscription(r.Context(), req)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Create subscription failed", err.Error(), r.URL.Path)
			return
		}
		sub.Secret = ""
		writeJSON(w, http.StatusCreated, sub)
	case http.MethodGet:
		cursor := r.URL.Query().Get("cursor")
		limit := 100
		if v := r.URL.Query().Get("limit"); v != "" {
			fmt.Sscanf(v, "%d", &limit)
		}
		items, next, err := s.Store.ListSubscriptions(r.Context(), cursor, limit)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "List subscriptions failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// SubscriptionByIDHandler handles DELETE /v1/subscriptions/{id}
func (s *Server) SubscriptionByIDHandler(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.URL.Path, "/v1/subscriptions/") {
		writeNotFound(w, "Not Found", r.URL.Path)
		return
	}
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/v1/subscriptions/")
	err := s.Store.DeleteSubscription(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeNotFound(w, "Subscription not found", r.URL.Path)
		return
	}
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Delete subscription failed", err.Error(), r.URL.Path)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, 200, map[string]string{"status": "ok"})
}

func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, 200, map[string]string{"status": "ready"})
}
