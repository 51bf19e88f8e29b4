package api

import (
	"context"
	"errors"
	"log"
	"time"

	"vrpsolve/internal/csp"
	"vrpsolve/internal/metrics"
	"vrpsolve/internal/model"
	"vrpsolve/internal/runner"
)

// runJob executes one solve job in the background: marks it running, solves,
// streams incumbents to the broker, and records the final result. Terminal
// events also go to webhook subscribers.
func (s *Server) runJob(job model.SolveJob, inst model.Instance) {
	ctx := context.Background()

	job.Status = model.JobRunning
	if err := s.Store.UpdateJob(ctx, job); err != nil {
		log.Printf("job %s: mark running: %v", job.ID, err)
		return
	}

	propagator := job.Request.Propagator
	if propagator == "" {
		propagator = string(csp.ForwardChecking)
	}

	start := time.Now()
	res, err := runner.Run(ctx, inst, job.Request, func(incumbent model.SolveResult) {
		s.Broker.Publish(job.ID, JobEvent{Type: "solution.improved", Data: map[string]any{
			"jobId":         job.ID,
			"totalDistance": incumbent.Total,
			"routes":        len(incumbent.Routes),
		}})
		metrics.BestDistance.WithLabelValues(job.InstanceID).Set(incumbent.Total)
	})
	elapsed := time.Since(start)

	job.FinishedAt = time.Now().UTC().Format(time.RFC3339)
	if err != nil {
		job.Status = model.JobFailed
		job.Error = err.Error()
		if updErr := s.Store.UpdateJob(ctx, job); updErr != nil {
			log.Printf("job %s: record failure: %v", job.ID, updErr)
		}
		kind := "error"
		if errors.Is(err, csp.ErrInvalidInstance) {
			kind = "invalid_instance"
		}
		metrics.Solves.WithLabelValues(propagator, "failed").Inc()
		evt := map[string]any{"jobId": job.ID, "instanceId": job.InstanceID, "kind": kind, "error": err.Error()}
		s.Broker.Publish(job.ID, JobEvent{Type: "solve.failed", Data: evt})
		s.Pub.Emit(ctx, "solve.failed", evt)
		return
	}

	job.Status = model.JobDone
	job.Result = &res
	if updErr := s.Store.UpdateJob(ctx, job); updErr != nil {
		log.Printf("job %s: record result: %v", job.ID, updErr)
	}

	metrics.Solves.WithLabelValues(propagator, res.Status).Inc()
	metrics.SolveNodes.WithLabelValues(propagator).Observe(float64(res.Nodes))
	metrics.SolveBackjumps.WithLabelValues(propagator).Observe(float64(res.Backjumps))
	metrics.SolveDuration.WithLabelValues(propagator, res.Status).Observe(elapsed.Seconds())
	if len(res.Routes) > 0 {
		metrics.BestDistance.WithLabelValues(job.InstanceID).Set(res.Total)
	}

	evt := map[string]any{
		"jobId":         job.ID,
		"instanceId":    job.InstanceID,
		"status":        res.Status,
		"proven":        res.Proven,
		"totalDistance": res.Total,
		"nodes":         res.Nodes,
		"backjumps":     res.Backjumps,
	}
	s.Broker.Publish(job.ID, JobEvent{Type: "solve.completed", Data: evt})
	s.Pub.Emit(ctx, "solve.completed", evt)
}
