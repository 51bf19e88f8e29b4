package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"vrpsolve/internal/model"
)

func testInstance() model.Instance {
	return model.Instance{
		Name:  "toy",
		Depot: model.Customer{Due: 100},
		Customers: []model.Customer{
			{ID: 1, Location: model.Point{X: 1}, Demand: 5, Due: 100},
		},
		Vehicles: []model.Vehicle{{ID: 1, Capacity: 10}},
	}
}

func TestMemoryInstanceCRUD(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	inst, err := m.CreateInstance(ctx, testInstance())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if inst.ID == "" {
		t.Fatal("expected generated id")
	}

	got, err := m.GetInstance(ctx, inst.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "toy" || len(got.Customers) != 1 {
		t.Errorf("round trip mismatch: %+v", got)
	}

	if _, err := m.GetInstance(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing id: got %v, want ErrNotFound", err)
	}

	if err := m.DeleteInstance(ctx, inst.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := m.GetInstance(ctx, inst.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("after delete: got %v, want ErrNotFound", err)
	}
}

func TestMemoryListInstancesPaging(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if _, err := m.CreateInstance(ctx, testInstance()); err != nil {
			t.Fatal(err)
		}
	}
	first, next, err := m.ListInstances(ctx, "", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 2 || next == "" {
		t.Fatalf("first page: %d items, next %q", len(first), next)
	}
	rest, _, err := m.ListInstances(ctx, next, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(rest) != 3 {
		t.Fatalf("second page: got %d items, want 3", len(rest))
	}
	for _, inst := range rest {
		if inst.ID == first[0].ID || inst.ID == first[1].ID {
			t.Fatal("pages overlap")
		}
	}
}

func TestMemoryJobLifecycle(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	inst, _ := m.CreateInstance(ctx, testInstance())

	job, err := m.CreateJob(ctx, model.SolveJob{
		InstanceID: inst.ID,
		Request:    model.SolveRequest{InstanceID: inst.ID, Propagator: "ac3"},
	})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	if job.Status != model.JobQueued {
		t.Errorf("status = %q, want queued", job.Status)
	}

	job.Status = model.JobDone
	job.Result = &model.SolveResult{Status: "optimal", Proven: true, Total: 12.5}
	if err := m.UpdateJob(ctx, job); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := m.GetJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != model.JobDone || got.Result == nil || got.Result.Total != 12.5 {
		t.Errorf("job after update: %+v", got)
	}

	jobs, _, err := m.ListJobs(ctx, inst.ID, "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 1 {
		t.Fatalf("list by instance: got %d jobs, want 1", len(jobs))
	}
	jobs, _, err = m.ListJobs(ctx, "other", "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 0 {
		t.Fatalf("list by other instance: got %d jobs, want 0", len(jobs))
	}
}

func TestMemorySubscriptionsByEvent(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	_, err := m.CreateSubscription(ctx, model.SubscriptionRequest{
		URL: "http://a", Events: []string{"solve.completed"}, Secret: "s1",
	})
	if err != nil {
		t.Fatal(err)
	}
	wild, err := m.CreateSubscription(ctx, model.SubscriptionRequest{
		URL: "http://b", Events: []string{"*"},
	})
	if err != nil {
		t.Fatal(err)
	}

	subs, err := m.GetSubscriptionsForEvent(ctx, "solve.completed")
	if err != nil {
		t.Fatal(err)
	}
	if len(subs) != 2 {
		t.Fatalf("completed: got %d subs, want 2", len(subs))
	}
	subs, err = m.GetSubscriptionsForEvent(ctx, "solve.failed")
	if err != nil {
		t.Fatal(err)
	}
	if len(subs) != 1 || subs[0].ID != wild.ID {
		t.Fatalf("failed: got %+v, want only wildcard", subs)
	}

	listed, _, err := m.ListSubscriptions(ctx, "", 10)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range listed {
		if s.Secret != "" {
			t.Error("list must not expose secrets")
		}
	}
}

func TestMemoryWebhookQueue(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	id, err := m.EnqueueWebhook(ctx, "sub1", "solve.completed", "http://x", "sec", []byte(`{}`))
	if err != nil {
		t.Fatal(err)
	}

	due, err := m.FetchDueWebhookDeliveries(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(due) != 1 || due[0].ID != id {
		t.Fatalf("due: %+v", due)
	}

	// Failed attempt reschedules into the future, so nothing is due.
	next := time.Now().Add(time.Hour)
	if err := m.MarkWebhookDelivery(ctx, id, false, &next, "boom", 500, 12); err != nil {
		t.Fatal(err)
	}
	due, _ = m.FetchDueWebhookDeliveries(ctx, 10)
	if len(due) != 0 {
		t.Fatalf("rescheduled delivery still due: %+v", due)
	}

	past := time.Now().Add(-time.Minute)
	if err := m.MarkWebhookDelivery(ctx, id, false, &past, "boom", 500, 12); err != nil {
		t.Fatal(err)
	}
	due, _ = m.FetchDueWebhookDeliveries(ctx, 10)
	if len(due) != 1 || due[0].Attempts != 2 {
		t.Fatalf("after reschedule: %+v", due)
	}

	if err := m.MarkWebhookDelivery(ctx, id, true, nil, "", 200, 5); err != nil {
		t.Fatal(err)
	}
	due, _ = m.FetchDueWebhookDeliveries(ctx, 10)
	if len(due) != 0 {
		t.Fatal("delivered webhook still due")
	}
}
