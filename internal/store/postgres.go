package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"vrpsolve/internal/model"
)

// Postgres persists instances, jobs, subscriptions, and webhook deliveries.
// Instance and result payloads are stored as JSONB blobs; the relational
// columns exist only for the fields queries filter or order by.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

// Init creates the schema when it does not exist yet.
func (p *Postgres) Init(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS instances (
			id UUID PRIMARY KEY,
			name TEXT,
			payload JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS solve_jobs (
			id UUID PRIMARY KEY,
			instance_id UUID NOT NULL,
			status TEXT NOT NULL,
			request JSONB NOT NULL,
			result JSONB,
			error TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			finished_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS subscriptions (
			id UUID PRIMARY KEY,
			url TEXT NOT NULL,
			events TEXT[] NOT NULL,
			secret TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS webhook_deliveries (
			id UUID PRIMARY KEY,
			subscription_id UUID NOT NULL,
			event_type TEXT NOT NULL,
			url TEXT NOT NULL,
			secret TEXT,
			payload JSONB NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			attempts INT NOT NULL DEFAULT 0,
			next_attempt_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			last_error TEXT,
			response_code INT,
			latency_ms INT
		)`,
	}
	for _, s := range stmts {
		if _, err := p.db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (p *Postgres) CreateInstance(ctx context.Context, inst model.Instance) (model.Instance, error) {
	inst.ID = uuid.New().String()
	payload, err := json.Marshal(inst)
	if err != nil {
		return model.Instance{}, err
	}
	_, err = p.db.ExecContext(ctx, `INSERT INTO instances (id, name, payload) VALUES ($1,$2,$3)`,
		inst.ID, inst.Name, payload)
	if err != nil {
		return model.Instance{}, err
	}
	return inst, nil
}

func (p *Postgres) GetInstance(ctx context.Context, id string) (model.Instance, error) {
	var payload []byte
	err := p.db.QueryRowContext(ctx, `SELECT payload FROM instances WHERE id=$1`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Instance{}, ErrNotFound
	}
	if err != nil {
		return model.Instance{}, err
	}
	var inst model.Instance
	if err := json.Unmarshal(payload, &inst); err != nil {
		return model.Instance{}, err
	}
	return inst, nil
}

func (p *Postgres) ListInstances(ctx context.Context, cursor string, limit int) ([]model.Instance, string, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := p.db.QueryContext(ctx, `
		SELECT id::text, payload FROM instances
		WHERE ($1 = '' OR created_at > (SELECT created_at FROM instances WHERE id::text = $1))
		ORDER BY created_at LIMIT $2`, cursor, limit+1)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()
	var out []model.Instance
	for rows.Next() {
		var id string
		var payload []byte
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, "", err
		}
		var inst model.Instance
		if err := json.Unmarshal(payload, &inst); err != nil {
			return nil, "", err
		}
		out = append(out, inst)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}
	next := ""
	if len(out) > limit {
		out = out[:limit]
		next = out[limit-1].ID
	}
	return out, next, nil
}

func (p *Postgres) DeleteInstance(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM instances WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) CreateJob(ctx context.Context, job model.SolveJob) (model.SolveJob, error) {
	job.ID = uuid.New().String()
	if job.Status == "" {
		job.Status = model.JobQueued
	}
	job.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	req, err := json.Marshal(job.Request)
	if err != nil {
		return model.SolveJob{}, err
	}
	_, err = p.db.ExecContext(ctx, `INSERT INTO solve_jobs (id, instance_id, status, request) VALUES ($1,$2,$3,$4)`,
		job.ID, job.InstanceID, job.Status, req)
	if err != nil {
		return model.SolveJob{}, err
	}
	return job, nil
}

func (p *Postgres) GetJob(ctx context.Context, id string) (model.SolveJob, error) {
	var job model.SolveJob
	var req, result []byte
	var errMsg, finishedAt sql.NullString
	var createdAt time.Time
	err := p.db.QueryRowContext(ctx, `
		SELECT id::text, instance_id::text, status, request, result, error, created_at, finished_at::text
		FROM solve_jobs WHERE id=$1`, id).
		Scan(&job.ID, &job.InstanceID, &job.Status, &req, &result, &errMsg, &createdAt, &finishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SolveJob{}, ErrNotFound
	}
	if err != nil {
		return model.SolveJob{}, err
	}
	if err := json.Unmarshal(req, &job.Request); err != nil {
		return model.SolveJob{}, err
	}
	if len(result) > 0 {
		job.Result = &model.SolveResult{}
		if err := json.Unmarshal(result, job.Result); err != nil {
			return model.SolveJob{}, err
		}
	}
	job.Error = errMsg.String
	job.CreatedAt = createdAt.UTC().Format(time.RFC3339)
	job.FinishedAt = finishedAt.String
	return job, nil
}

func (p *Postgres) UpdateJob(ctx context.Context, job model.SolveJob) error {
	var result any
	if job.Result != nil {
		b, err := json.Marshal(job.Result)
		if err != nil {
			return err
		}
		result = b
	}
	var finished any
	if job.FinishedAt != "" {
		finished = job.FinishedAt
	}
	res, err := p.db.ExecContext(ctx, `
		UPDATE solve_jobs SET status=$2, result=$3, error=NULLIF($4,''), finished_at=$5::timestamptz
		WHERE id=$1`, job.ID, job.Status, result, job.Error, finished)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) ListJobs(ctx context.Context, instanceID, cursor string, limit int) ([]model.SolveJob, string, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := p.db.QueryContext(ctx, `
		SELECT id::text FROM solve_jobs
		WHERE ($1 = '' OR instance_id::text = $1)
		  AND ($2 = '' OR created_at > (SELECT created_at FROM solve_jobs WHERE id::text = $2))
		ORDER BY created_at LIMIT $3`, instanceID, cursor, limit+1)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, "", err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}
	next := ""
	if len(ids) > limit {
		ids = ids[:limit]
		next = ids[limit-1]
	}
	out := make([]model.SolveJob, 0, len(ids))
	for _, id := range ids {
		job, err := p.GetJob(ctx, id)
		if err != nil {
			return nil, "", err
		}
		out = append(out, job)
	}
	return out, next, nil
}

func (p *Postgres) CreateSubscription(ctx context.Context, req model.SubscriptionRequest) (model.Subscription, error) {
	sub := model.Subscription{ID: uuid.New().String(), URL: req.URL, Events: req.Events, Secret: req.Secret}
	events, err := json.Marshal(req.Events)
	if err != nil {
		return model.Subscription{}, err
	}
	// Events round-trip through JSONB; the TEXT[] column is built in SQL.
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO subscriptions (id, url, events, secret)
		VALUES ($1, $2, ARRAY(SELECT jsonb_array_elements_text($3::jsonb)), $4)`,
		sub.ID, sub.URL, events, sub.Secret)
	if err != nil {
		return model.Subscription{}, err
	}
	return sub, nil
}

func (p *Postgres) GetSubscriptionsForEvent(ctx context.Context, eventType string) ([]model.Subscription, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id::text, url, to_jsonb(events), secret FROM subscriptions
		WHERE $1 = ANY(events) OR '*' = ANY(events)`, eventType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSubscriptions(rows)
}

func (p *Postgres) ListSubscriptions(ctx context.Context, cursor string, limit int) ([]model.Subscription, string, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := p.db.QueryContext(ctx, `
		SELECT id::text, url, to_jsonb(events), '' FROM subscriptions
		WHERE ($1 = '' OR created_at > (SELECT created_at FROM subscriptions WHERE id::text = $1))
		ORDER BY created_at LIMIT $2`, cursor, limit+1)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()
	out, err := scanSubscriptions(rows)
	if err != nil {
		return nil, "", err
	}
	next := ""
	if len(out) > limit {
		out = out[:limit]
		next = out[limit-1].ID
	}
	return out, next, nil
}

func (p *Postgres) DeleteSubscription(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanSubscriptions(rows *sql.Rows) ([]model.Subscription, error) {
	var out []model.Subscription
	for rows.Next() {
		var sub model.Subscription
		var events []byte
		var secret sql.NullString
		if err := rows.Scan(&sub.ID, &sub.URL, &events, &secret); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(events, &sub.Events); err != nil {
			return nil, err
		}
		sub.Secret = secret.String
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (p *Postgres) EnqueueWebhook(ctx context.Context, subscriptionID, eventType, url, secret string, payload []byte) (string, error) {
	id := uuid.New().String()
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO webhook_deliveries (id, subscription_id, event_type, url, secret, payload)
		VALUES ($1,$2,$3,$4,$5,$6)`, id, subscriptionID, eventType, url, secret, payload)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (p *Postgres) FetchDueWebhookDeliveries(ctx context.Context, limit int) ([]WebhookDelivery, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := p.db.QueryContext(ctx, `
		SELECT id::text, subscription_id::text, event_type, url, coalesce(secret,''), payload, status, attempts
		FROM webhook_deliveries
		WHERE status='pending' AND next_attempt_at <= now()
		ORDER BY next_attempt_at LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []WebhookDelivery
	for rows.Next() {
		var d WebhookDelivery
		if err := rows.Scan(&d.ID, &d.SubscriptionID, &d.EventType, &d.URL, &d.Secret, &d.Payload, &d.Status, &d.Attempts); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (p *Postgres) MarkWebhookDelivery(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode int, latencyMs int) error {
	status := "pending"
	if success {
		status = "delivered"
	}
	var next any
	if nextAttemptAt != nil {
		next = *nextAttemptAt
	}
	res, err := p.db.ExecContext(ctx, `
		UPDATE webhook_deliveries
		SET status=$2, attempts=attempts+1, next_attempt_at=coalesce($3, next_attempt_at),
		    last_error=NULLIF($4,''), response_code=$5, latency_ms=$6
		WHERE id=$1`, id, status, next, lastError, responseCode, latencyMs)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) FailWebhookDelivery(ctx context.Context, id string, lastError string, responseCode int, latencyMs int) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE webhook_deliveries
		SET status='failed', attempts=attempts+1, last_error=NULLIF($2,''), response_code=$3, latency_ms=$4
		WHERE id=$1`, id, lastError, responseCode, latencyMs)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
