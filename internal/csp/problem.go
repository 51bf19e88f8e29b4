package csp

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInstance marks instance validation failures. These are surfaced
// before any search starts and are never retried.
var ErrInvalidInstance = errors.New("invalid instance")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInstance, fmt.Sprintf(format, args...))
}

// Customer is one delivery stop. Times are in the benchmark's unitless scale
// where travel time equals Euclidean distance.
type Customer struct {
	ID      int
	X, Y    float64
	Demand  int
	Ready   float64 // earliest service start
	Due     float64 // latest service start
	Service float64 // service duration
}

// Vehicle is one capacity-limited vehicle. All vehicles start and end at the
// depot with an unconstrained window.
type Vehicle struct {
	ID       int
	Capacity int
}

// Problem is an immutable VRPTW instance: customers, vehicles, and a
// precomputed symmetric distance matrix. Location index 0 is the depot;
// customer i (by variable index) is location i+1.
type Problem struct {
	depot     Customer
	customers []Customer
	vehicles  []Vehicle
	dist      [][]float64
}

// NewProblem validates the raw records and builds the distance matrix.
// It fails with ErrInvalidInstance when a customer's window end precedes its
// start, a demand is negative, a capacity is negative, customer IDs repeat,
// or a customer's demand exceeds every vehicle capacity.
func NewProblem(depot Customer, customers []Customer, vehicles []Vehicle) (*Problem, error) {
	if len(customers) == 0 {
		return nil, invalidf("no customers")
	}
	if len(vehicles) == 0 {
		return nil, invalidf("no vehicles")
	}
	maxCap := 0
	for _, v := range vehicles {
		if v.Capacity < 0 {
			return nil, invalidf("vehicle %d: negative capacity %d", v.ID, v.Capacity)
		}
		if v.Capacity > maxCap {
			maxCap = v.Capacity
		}
	}
	seen := make(map[int]bool, len(customers)+1)
	seen[depot.ID] = true
	for _, c := range customers {
		if seen[c.ID] {
			return nil, invalidf("duplicate customer id %d", c.ID)
		}
		seen[c.ID] = true
		if c.Demand < 0 {
			return nil, invalidf("customer %d: negative demand %d", c.ID, c.Demand)
		}
		if c.Due < c.Ready {
			return nil, invalidf("customer %d: window end %g precedes start %g", c.ID, c.Due, c.Ready)
		}
		if c.Demand > maxCap {
			return nil, invalidf("customer %d: demand %d exceeds every vehicle capacity", c.ID, c.Demand)
		}
	}
	p := &Problem{
		depot:     depot,
		customers: append([]Customer(nil), customers...),
		vehicles:  append([]Vehicle(nil), vehicles...),
	}
	p.dist = p.buildMatrix()
	return p, nil
}

func (p *Problem) buildMatrix() [][]float64 {
	n := len(p.customers) + 1
	locs := make([][2]float64, n)
	locs[0] = [2]float64{p.depot.X, p.depot.Y}
	for i, c := range p.customers {
		locs[i+1] = [2]float64{c.X, c.Y}
	}
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
		for j := range m[i] {
			dx := locs[i][0] - locs[j][0]
			dy := locs[i][1] - locs[j][1]
			m[i][j] = math.Hypot(dx, dy)
		}
	}
	return m
}

// NumCustomers returns the number of decision variables (depot excluded).
func (p *Problem) NumCustomers() int { return len(p.customers) }

// NumVehicles returns the fleet size.
func (p *Problem) NumVehicles() int { return len(p.vehicles) }

// Customer returns the customer at variable index i.
func (p *Problem) Customer(i int) Customer { return p.customers[i] }

// Vehicle returns the vehicle at index k.
func (p *Problem) Vehicle(k int) Vehicle { return p.vehicles[k] }

// Distance returns the Euclidean distance between location indices.
// Index 0 is the depot; customer variable i is location i+1.
func (p *Problem) Distance(a, b int) float64 { return p.dist[a][b] }

// TravelTime returns the travel time between location indices. Benchmark
// convention: travel time equals distance.
func (p *Problem) TravelTime(a, b int) float64 { return p.dist[a][b] }

// Loc converts a customer variable index to its location index.
func (p *Problem) Loc(i int) int { return i + 1 }

// CanServe reports whether vehicle k can take customer i next, given the
// vehicle's current load and the arrival time at the customer. Waiting is
// permitted when the vehicle arrives before the window opens; service may not
// start after the window closes.
func (p *Problem) CanServe(i, k int, load int, arrival float64) bool {
	c := p.customers[i]
	if load+c.Demand > p.vehicles[k].Capacity {
		return false
	}
	return arrival <= c.Due
}
