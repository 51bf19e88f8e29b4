package store

import (
	"context"
	"errors"
	"time"

	"vrpsolve/internal/model"
)

// Store is the persistence interface used by the API server.
type Store interface {
	// Instances
	CreateInstance(ctx context.Context, inst model.Instance) (model.Instance, error)
	GetInstance(ctx context.Context, id string) (model.Instance, error)
	ListInstances(ctx context.Context, cursor string, limit int) ([]model.Instance, string, error)
	DeleteInstance(ctx context.Context, id string) error

	// Solve jobs
	CreateJob(ctx context.Context, job model.SolveJob) (model.SolveJob, error)
	GetJob(ctx context.Context, id string) (model.SolveJob, error)
	UpdateJob(ctx context.Context, job model.SolveJob) error
	ListJobs(ctx context.Context, instanceID, cursor string, limit int) ([]model.SolveJob, string, error)

	// Subscriptions
	CreateSubscription(ctx context.Context, req model.SubscriptionRequest) (model.Subscription, error)
	GetSubscriptionsForEvent(ctx context.Context, eventType string) ([]model.Subscription, error)
	ListSubscriptions(ctx context.Context, cursor string, limit int) ([]model.Subscription, string, error)
	DeleteSubscription(ctx context.Context, id string) error

	// Webhook deliveries
	EnqueueWebhook(ctx context.Context, subscriptionID, eventType, url, secret string, payload []byte) (string, error)
	FetchDueWebhookDeliveries(ctx context.Context, limit int) ([]WebhookDelivery, error)
	MarkWebhookDelivery(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode int, latencyMs int) error
	FailWebhookDelivery(ctx context.Context, id string, lastError string, responseCode int, latencyMs int) error
}

var ErrNotFound = errors.New("not found")
