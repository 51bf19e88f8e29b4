package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"vrpsolve/internal/model"
)

// Memory is a simple in-memory store used when no DATABASE_URL is set.
type Memory struct {
	mu         sync.Mutex
	instances  map[string]model.Instance
	instOrder  []string // creation order, for stable listing
	jobs       map[string]model.SolveJob
	jobOrder   []string
	subs       map[string]model.Subscription
	subOrder   []string
	deliveries map[string]*memDelivery
	delOrder   []string
}

func NewMemory() *Memory {
	return &Memory{
		instances:  map[string]model.Instance{},
		jobs:       map[string]model.SolveJob{},
		subs:       map[string]model.Subscription{},
		deliveries: map[string]*memDelivery{},
	}
}

// memDelivery augments WebhookDelivery with scheduling/metrics
type memDelivery struct {
	WebhookDelivery
	NextAttemptAt time.Time
	LastError     string
	ResponseCode  int
	LatencyMs     int
}

func (m *Memory) CreateInstance(ctx context.Context, inst model.Instance) (model.Instance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inst.ID = uuid.New().String()
	m.instances[inst.ID] = inst
	m.instOrder = append(m.instOrder, inst.ID)
	return inst, nil
}

func (m *Memory) GetInstance(ctx context.Context, id string) (model.Instance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inst, ok := m.instances[id]
	if !ok {
		return model.Instance{}, ErrNotFound
	}
	return inst, nil
}

func (m *Memory) ListInstances(ctx context.Context, cursor string, limit int) ([]model.Instance, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids, next := page(m.instOrder, cursor, limit)
	out := make([]model.Instance, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.instances[id])
	}
	return out, next, nil
}

func (m *Memory) DeleteInstance(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.instances[id]; !ok {
		return ErrNotFound
	}
	delete(m.instances, id)
	m.instOrder = removeID(m.instOrder, id)
	return nil
}

func (m *Memory) CreateJob(ctx context.Context, job model.SolveJob) (model.SolveJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job.ID = uuid.New().String()
	if job.Status == "" {
		job.Status = model.JobQueued
	}
	job.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	m.jobs[job.ID] = job
	m.jobOrder = append(m.jobOrder, job.ID)
	return job, nil
}

func (m *Memory) GetJob(ctx context.Context, id string) (model.SolveJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return model.SolveJob{}, ErrNotFound
	}
	return job, nil
}

func (m *Memory) UpdateJob(ctx context.Context, job model.SolveJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[job.ID]; !ok {
		return ErrNotFound
	}
	m.jobs[job.ID] = job
	return nil
}

func (m *Memory) ListJobs(ctx context.Context, instanceID, cursor string, limit int) ([]model.SolveJob, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := m.jobOrder
	if instanceID != "" {
		ids = nil
		for _, id := range m.jobOrder {
			if m.jobs[id].InstanceID == instanceID {
				ids = append(ids, id)
			}
		}
	}
	pageIDs, next := page(ids, cursor, limit)
	out := make([]model.SolveJob, 0, len(pageIDs))
	for _, id := range pageIDs {
		out = append(out, m.jobs[id])
	}
	return out, next, nil
}

func (m *Memory) CreateSubscription(ctx context.Context, req model.SubscriptionRequest) (model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub := model.Subscription{ID: uuid.New().String(), URL: req.URL, Events: req.Events, Secret: req.Secret}
	m.subs[sub.ID] = sub
	m.subOrder = append(m.subOrder, sub.ID)
	return sub, nil
}

func (m *Memory) GetSubscriptionsForEvent(ctx context.Context, eventType string) ([]model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Subscription
	for _, id := range m.subOrder {
		sub := m.subs[id]
		for _, ev := range sub.Events {
			if ev == eventType || ev == "*" {
				out = append(out, sub)
				break
			}
		}
	}
	return out, nil
}

func (m *Memory) ListSubscriptions(ctx context.Context, cursor string, limit int) ([]model.Subscription, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids, next := page(m.subOrder, cursor, limit)
	out := make([]model.Subscription, 0, len(ids))
	for _, id := range ids {
		sub := m.subs[id]
		sub.Secret = ""
		out = append(out, sub)
	}
	return out, next, nil
}

func (m *Memory) DeleteSubscription(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.subs[id]; !ok {
		return ErrNotFound
	}
	delete(m.subs, id)
	m.subOrder = removeID(m.subOrder, id)
	return nil
}

func (m *Memory) EnqueueWebhook(ctx context.Context, subscriptionID, eventType, url, secret string, payload []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New().String()
	d := &memDelivery{
		WebhookDelivery: WebhookDelivery{ID: id, SubscriptionID: subscriptionID, EventType: eventType, URL: url, Secret: secret, Payload: payload, Status: "pending"},
		NextAttemptAt:   time.Now(),
	}
	m.deliveries[id] = d
	m.delOrder = append(m.delOrder, id)
	return id, nil
}

func (m *Memory) FetchDueWebhookDeliveries(ctx context.Context, limit int) ([]WebhookDelivery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 {
		limit = 50
	}
	now := time.Now()
	out := []WebhookDelivery{}
	for _, id := range m.delOrder {
		d := m.deliveries[id]
		if d.Status == "pending" && !d.NextAttemptAt.After(now) {
			out = append(out, d.WebhookDelivery)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (m *Memory) MarkWebhookDelivery(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode int, latencyMs int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.deliveries[id]
	if !ok {
		return ErrNotFound
	}
	d.Attempts++
	d.LastError = lastError
	d.ResponseCode = responseCode
	d.LatencyMs = latencyMs
	if success {
		d.Status = "delivered"
	} else if nextAttemptAt != nil {
		d.NextAttemptAt = *nextAttemptAt
	}
	return nil
}

func (m *Memory) FailWebhookDelivery(ctx context.Context, id string, lastError string, responseCode int, latencyMs int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.deliveries[id]
	if !ok {
		return ErrNotFound
	}
	d.Attempts++
	d.Status = "failed"
	d.LastError = lastError
	d.ResponseCode = responseCode
	d.LatencyMs = latencyMs
	return nil
}

func page(ids []string, cursor string, limit int) ([]string, string) {
	start := 0
	if cursor != "" {
		for i, id := range ids {
			if id == cursor {
				start = i + 1
				break
			}
		}
	}
	if limit <= 0 {
		limit = 100
	}
	end := start + limit
	if end > len(ids) {
		end = len(ids)
	}
	next := ""
	if end < len(ids) && end > start {
		next = ids[end-1]
	}
	return ids[start:end], next
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
