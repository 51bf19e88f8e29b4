package api

import (
	"fmt"

	"vrpsolve/internal/model"
)

func validateSolveRequest(req *model.SolveRequest) error {
	if req.InstanceID == "" {
		return fmt.Errorf("instanceId is required")
	}
	if req.Propagator != "" && req.Propagator != "forward-checking" && req.Propagator != "ac3" {
		return fmt.Errorf("invalid propagator: %s", req.Propagator)
	}
	if req.NodeBudget < 0 {
		return fmt.Errorf("nodeBudget must be >= 0")
	}
	if req.TimeBudgetMs < 0 {
		return fmt.Errorf("timeBudgetMs must be >= 0")
	}
	return nil
}

func validateInstance(inst *model.Instance) error {
	if len(inst.Customers) == 0 {
		return fmt.Errorf("at least one customer is required")
	}
	if len(inst.Vehicles) == 0 {
		return fmt.Errorf("at least one vehicle is required")
	}
	seen := map[int]struct{}{}
	for _, c := range inst.Customers {
		if c.Due < c.Ready {
			return fmt.Errorf("customer %d: window end %v precedes start %v", c.ID, c.Due, c.Ready)
		}
		if c.Demand < 0 {
			return fmt.Errorf("customer %d: negative demand", c.ID)
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("duplicate customer id %d", c.ID)
		}
		seen[c.ID] = struct{}{}
	}
	for _, v := range inst.Vehicles {
		if v.Capacity < 0 {
			return fmt.Errorf("vehicle %d: negative capacity", v.ID)
		}
	}
	return nil
}

func validateSubscription(req *model.SubscriptionRequest) error {
	if req.URL == "" {
		return fmt.Errorf("url is required")
	}
	if len(req.Events) == 0 {
		return fmt.Errorf("at least one event type is required")
	}
	allowed := map[string]struct{}{"solve.completed": {}, "solve.failed": {}, "solution.improved": {}, "*": {}}
	for _, ev := range req.Events {
		if _, ok := allowed[ev]; !ok {
			return fmt.Errorf("unknown event type: %s (allowed: solve.completed, solve.failed, solution.improved, *)", ev)
		}
	}
	return nil
}
