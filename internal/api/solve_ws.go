package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"vrpsolve/internal/model"
	"vrpsolve/internal/store"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(_ *http.Request) bool { return true }}

type wsMessage struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

// jobStream upgrades to WebSocket and streams solver events for one job:
// a snapshot of the job's current state, then solution.improved events as
// better incumbents are found, then solve.completed or solve.failed.
func (s *Server) jobStream(w http.ResponseWriter, r *http.Request, jobID string) {
	job, err := s.Store.GetJob(r.Context(), jobID)
	if errors.Is(err, store.ErrNotFound) {
		writeNotFound(w, "Job not found", r.URL.Path)
		return
	}
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Get job failed", err.Error(), r.URL.Path)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer func() { _ = conn.Close() }()

	ch := s.Broker.Subscribe(jobID)
	defer s.Broker.Unsubscribe(jobID, ch)

	// Snapshot first, so late subscribers see finished jobs immediately.
	snapshot := map[string]any{"jobId": job.ID, "status": job.Status}
	if job.Result != nil {
		snapshot["result"] = job.Result
	}
	if err := conn.WriteJSON(wsMessage{Type: "job.snapshot", Data: snapshot}); err != nil {
		return
	}
	if job.Status == model.JobDone || job.Status == model.JobFailed {
		_ = conn.WriteJSON(wsMessage{Type: "complete"})
		return
	}

	// Drain client frames so pongs and close frames are processed.
	conn.SetReadLimit(1 << 20)
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(20 * time.Second)
	defer ping.Stop()
	for {
		select {
		case <-closed:
			return
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		case evt, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteJSON(wsMessage{Type: evt.Type, Data: evt.Data}); err != nil {
				return
			}
			if evt.Type == "solve.completed" || evt.Type == "solve.failed" {
				_ = conn.WriteJSON(wsMessage{Type: "complete"})
				return
			}
		}
	}
}
