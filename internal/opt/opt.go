package opt

import (
	"context"
	"time"

	"horseHerd/internal/flowshop"
)

type Optimizer interface {
	Solve(ctx context.Context, inst *flowshop.Instance) (Result, error)
}

// Reason объясняет, почему остановился поиск.
type Reason string

const (
	ReasonBudget   Reason = "budget"
	ReasonPatience Reason = "patience"
	ReasonCallback Reason = "callback"
	ReasonTarget   Reason = "target"
	ReasonContext  Reason = "context"
)

type Result struct {
	Permutation []int
	Makespan    int
	Iterations  int
	Duration    time.Duration
	Reason      Reason
	Meta        map[string]any
}
