package model

// Wire types shared by the API, the store, and the benchmark tooling.

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Customer struct {
	ID       int     `json:"id"`
	Location Point   `json:"location"`
	Demand   int     `json:"demand"`
	Ready    float64 `json:"ready"`
	Due      float64 `json:"due"`
	Service  float64 `json:"service"`
}

type Vehicle struct {
	ID       int `json:"id"`
	Capacity int `json:"capacity"`
}

// Instance is a full VRPTW problem instance as stored and served.
type Instance struct {
	ID        string     `json:"id"`
	Name      string     `json:"name,omitempty"`
	Depot     Customer   `json:"depot"`
	Customers []Customer `json:"customers"`
	Vehicles  []Vehicle  `json:"vehicles"`
}

// SolveRequest configures one solve job over a stored instance.
type SolveRequest struct {
	InstanceID    string `json:"instanceId"`
	Propagator    string `json:"propagator,omitempty"` // forward-checking | ac3
	FirstSolution bool   `json:"firstSolution,omitempty"`
	Chronological bool   `json:"chronological,omitempty"`
	Improve       bool   `json:"improve,omitempty"`
	NodeBudget    int64  `json:"nodeBudget,omitempty"`
	TimeBudgetMs  int    `json:"timeBudgetMs,omitempty"`
}

// Job lifecycle statuses.
const (
	JobQueued  = "queued"
	JobRunning = "running"
	JobDone    = "done"
	JobFailed  = "failed"
)

// SolveJob tracks one background solve run.
type SolveJob struct {
	ID         string       `json:"id"`
	InstanceID string       `json:"instanceId"`
	Status     string       `json:"status"`
	Request    SolveRequest `json:"request"`
	Result     *SolveResult `json:"result,omitempty"`
	Error      string       `json:"error,omitempty"`
	CreatedAt  string       `json:"createdAt,omitempty"`
	FinishedAt string       `json:"finishedAt,omitempty"`
}

// SolveResult is the solver outcome in wire form.
type SolveResult struct {
	Status    string  `json:"status"` // optimal | feasible | infeasible
	Proven    bool    `json:"proven"`
	Budgeted  bool    `json:"budgeted,omitempty"`
	Total     float64 `json:"totalDistance,omitempty"`
	Routes    []Route `json:"routes,omitempty"`
	Nodes     int64   `json:"nodes"`
	Backjumps int64   `json:"backjumps"`
	ElapsedMs float64 `json:"elapsedMs"`
}

// Route is one vehicle's tour with per-stop schedule.
type Route struct {
	VehicleID int     `json:"vehicleId"`
	Load      int     `json:"load"`
	Distance  float64 `json:"distance"`
	Stops     []Stop  `json:"stops"`
}

type Stop struct {
	CustomerID int     `json:"customerId"`
	Arrival    float64 `json:"arrival"`
	Start      float64 `json:"serviceStart"`
	Departure  float64 `json:"departure"`
}

// SubscriptionRequest registers a webhook endpoint for solve events.
type SubscriptionRequest struct {
	URL    string   `json:"url"`
	Events []string `json:"events"` // solve.completed, solve.failed
	Secret string   `json:"secret"`
}

type Subscription struct {
	ID     string   `json:"id"`
	URL    string   `json:"url"`
	Events []string `json:"events"`
	Secret string   `json:"secret,omitempty"`
}
