package csp

import (
	"errors"
	"math"
	"testing"
)

func testDepot() Customer {
	return Customer{ID: 0, X: 0, Y: 0, Ready: 0, Due: 1000}
}

func TestNewProblemRejectsReversedWindow(t *testing.T) {
	_, err := NewProblem(testDepot(),
		[]Customer{{ID: 1, X: 1, Y: 1, Demand: 5, Ready: 10, Due: 5}},
		[]Vehicle{{ID: 1, Capacity: 50}})
	if !errors.Is(err, ErrInvalidInstance) {
		t.Fatalf("want ErrInvalidInstance, got %v", err)
	}
}

func TestNewProblemRejectsOversizedDemand(t *testing.T) {
	_, err := NewProblem(testDepot(),
		[]Customer{{ID: 1, X: 1, Y: 1, Demand: 80, Ready: 0, Due: 100}},
		[]Vehicle{{ID: 1, Capacity: 50}})
	if !errors.Is(err, ErrInvalidInstance) {
		t.Fatalf("want ErrInvalidInstance, got %v", err)
	}
}

func TestNewProblemRejectsDuplicateIDs(t *testing.T) {
	_, err := NewProblem(testDepot(),
		[]Customer{
			{ID: 1, X: 1, Y: 1, Demand: 5, Due: 100},
			{ID: 1, X: 2, Y: 2, Demand: 5, Due: 100},
		},
		[]Vehicle{{ID: 1, Capacity: 50}})
	if !errors.Is(err, ErrInvalidInstance) {
		t.Fatalf("want ErrInvalidInstance, got %v", err)
	}
}

func TestNewProblemRejectsEmpty(t *testing.T) {
	if _, err := NewProblem(testDepot(), nil, []Vehicle{{ID: 1, Capacity: 1}}); !errors.Is(err, ErrInvalidInstance) {
		t.Fatalf("no customers: want ErrInvalidInstance, got %v", err)
	}
	if _, err := NewProblem(testDepot(), []Customer{{ID: 1, Due: 1}}, nil); !errors.Is(err, ErrInvalidInstance) {
		t.Fatalf("no vehicles: want ErrInvalidInstance, got %v", err)
	}
}

func TestDistanceSymmetricEuclidean(t *testing.T) {
	p, err := NewProblem(testDepot(),
		[]Customer{
			{ID: 1, X: 3, Y: 4, Demand: 1, Due: 100},
			{ID: 2, X: 6, Y: 8, Demand: 1, Due: 100},
		},
		[]Vehicle{{ID: 1, Capacity: 10}})
	if err != nil {
		t.Fatal(err)
	}
	if got := p.Distance(0, p.Loc(0)); math.Abs(got-5) > 1e-9 {
		t.Fatalf("depot->c1: got %g, want 5", got)
	}
	for a := 0; a <= 2; a++ {
		for b := 0; b <= 2; b++ {
			if p.Distance(a, b) != p.Distance(b, a) {
				t.Fatalf("asymmetric distance at (%d,%d)", a, b)
			}
		}
	}
	if p.TravelTime(0, 1) != p.Distance(0, 1) {
		t.Fatal("travel time must equal distance")
	}
}

func TestCanServe(t *testing.T) {
	p, err := NewProblem(testDepot(),
		[]Customer{{ID: 1, X: 1, Y: 0, Demand: 10, Ready: 20, Due: 30}},
		[]Vehicle{{ID: 1, Capacity: 15}})
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		name    string
		load    int
		arrival float64
		want    bool
	}{
		{"fits", 0, 25, true},
		{"waiting permitted", 0, 5, true},
		{"arrival at due", 0, 30, true},
		{"too late", 0, 31, false},
		{"over capacity", 6, 25, false},
	}
	for _, tc := range cases {
		if got := p.CanServe(0, 0, tc.load, tc.arrival); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}
