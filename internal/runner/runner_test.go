package runner

import (
	"context"
	"errors"
	"testing"
	"time"

	"vrpsolve/internal/csp"
	"vrpsolve/internal/model"
)

func demoInstance() model.Instance {
	return model.Instance{
		Depot: model.Customer{Due: 1000},
		Customers: []model.Customer{
			{ID: 1, Location: model.Point{X: 10, Y: 0}, Demand: 10, Due: 1000},
			{ID: 2, Location: model.Point{X: 0, Y: 10}, Demand: 20, Due: 1000},
		},
		Vehicles: []model.Vehicle{{ID: 1, Capacity: 30}},
	}
}

func TestBuildConfigDefaults(t *testing.T) {
	cfg := BuildConfig(model.SolveRequest{})
	if cfg.Propagator != csp.ForwardChecking {
		t.Errorf("propagator = %q", cfg.Propagator)
	}
	cfg = BuildConfig(model.SolveRequest{Propagator: "ac3", TimeBudgetMs: 250, NodeBudget: 7})
	if cfg.Propagator != csp.AC3 || cfg.TimeBudget != 250*time.Millisecond || cfg.NodeBudget != 7 {
		t.Errorf("config: %+v", cfg)
	}
}

func TestRunSolvesInstance(t *testing.T) {
	res, err := Run(context.Background(), demoInstance(), model.SolveRequest{}, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Status != string(csp.StatusOptimal) || !res.Proven {
		t.Fatalf("result: %+v", res)
	}
	if len(res.Routes) != 1 || res.Routes[0].Load != 30 {
		t.Fatalf("routes: %+v", res.Routes)
	}
	if len(res.Routes[0].Stops) != 2 {
		t.Fatalf("stops: %+v", res.Routes[0].Stops)
	}
}

func TestRunRejectsInvalidInstance(t *testing.T) {
	inst := demoInstance()
	inst.Customers[0].Ready = 10
	inst.Customers[0].Due = 5
	_, err := Run(context.Background(), inst, model.SolveRequest{}, nil)
	if !errors.Is(err, csp.ErrInvalidInstance) {
		t.Fatalf("err = %v, want ErrInvalidInstance", err)
	}
}

func TestRunReportsIncumbents(t *testing.T) {
	var totals []float64
	_, err := Run(context.Background(), demoInstance(), model.SolveRequest{}, func(r model.SolveResult) {
		totals = append(totals, r.Total)
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(totals) == 0 {
		t.Fatal("expected at least one incumbent")
	}
	for i := 1; i < len(totals); i++ {
		if totals[i] >= totals[i-1] {
			t.Fatalf("incumbents not strictly improving: %v", totals)
		}
	}
}
