package manager

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/talgatbekov/bazarline-backend/pkg/enums"
	pkgerrors "github.com/talgatbekov/bazarline-backend/pkg/errors"
	"github.com/talgatbekov/bazarline-backend/pkg/logger"
	"github.com/talgatbekov/bazarline-backend/pkg/metrics"
	"github.com/talgatbekov/bazarline-backend/pkg/types"
)

type statusAPI interface {
	CheckManagerStatus(ctx context.Context) (types.ManagerStatus, error)
}

// Result is the settled or in-progress outcome of a gate evaluation.
type Result struct {
	State   enums.GateState     `json:"state"`
	Status  types.ManagerStatus `json:"status"`
	Message string              `json:"message,omitempty"`
}

type entry struct {
	state   enums.GateState
	authKey string
	status  types.ManagerStatus
	message string
}

// Gate decides whether a user may touch the operations dashboard. One
// evaluation per authentication session: the outcome is cached per user and
// invalidated when the auth key (token id) changes. At most one check is in
// flight per user; duplicate triggers are dropped, not queued. A check that
// outruns the timeout settles as error so a retry stays possible.
type Gate struct {
	mu      sync.Mutex
	entries map[string]*entry

	api     statusAPI
	timeout time.Duration
	logg    *logger.Logger
	metrics *metrics.DashboardMetrics
}

// GateParams wires the gate dependencies.
type GateParams struct {
	API     statusAPI
	Timeout time.Duration
	Logger  *logger.Logger
	Metrics *metrics.DashboardMetrics
}

func NewGate(params GateParams) (*Gate, error) {
	if params.API == nil {
		return nil, fmt.Errorf("status api required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Timeout <= 0 {
		params.Timeout = 10 * time.Second
	}
	return &Gate{
		entries: make(map[string]*entry),
		api:     params.API,
		timeout: params.Timeout,
		logg:    params.Logger,
		metrics: params.Metrics,
	}, nil
}

// Evaluate returns the gate outcome for the user, running the status check
// when none is cached for the current auth key. Authorized and unauthorized
// outcomes stick for the life of the auth session; an error outcome is
// re-checked on the next trigger, which is the retry affordance. A call
// arriving while a check is in flight reports checking and does not start a
// second call.
func (g *Gate) Evaluate(ctx context.Context, userID, authKey string) Result {
	g.mu.Lock()
	current, ok := g.entries[userID]
	if ok && current.authKey == authKey {
		switch current.state {
		case enums.GateStateChecking:
			g.mu.Unlock()
			return Result{State: enums.GateStateChecking}
		case enums.GateStateAuthorized, enums.GateStateUnauthorized:
			result := Result{State: current.state, Status: current.status, Message: current.message}
			g.mu.Unlock()
			return result
		}
	}
	// Fresh user, auth change, or a prior error: claim the check.
	g.entries[userID] = &entry{state: enums.GateStateChecking, authKey: authKey}
	g.mu.Unlock()

	return g.check(ctx, userID, authKey)
}

// Peek returns the cached outcome without triggering a check.
func (g *Gate) Peek(userID, authKey string) Result {
	g.mu.Lock()
	defer g.mu.Unlock()

	current, ok := g.entries[userID]
	if !ok || current.authKey != authKey {
		return Result{State: enums.GateStateUnchecked}
	}
	return Result{State: current.state, Status: current.status, Message: current.message}
}

// Reset drops the cached outcome, forcing a fresh evaluation next time.
// Called on logout.
func (g *Gate) Reset(userID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.entries, userID)
}

func (g *Gate) check(ctx context.Context, userID, authKey string) Result {
	checkCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	status, err := g.api.CheckManagerStatus(checkCtx)
	elapsed := time.Since(start)

	result := g.settle(status, err)
	g.metrics.ObserveGateCheck(result.State.String(), elapsed)
	if result.State == enums.GateStateError {
		g.logg.Error(g.logg.WithUserID(ctx, userID), "manager status check failed", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	current, ok := g.entries[userID]
	if !ok || current.authKey != authKey {
		// Auth changed while the check was in flight; discard the result.
		return result
	}
	current.state = result.State
	current.status = result.Status
	current.message = result.Message
	return result
}

// settle maps the API outcome to a gate state. The status is never
// partially trusted: any failure settles the gate closed.
func (g *Gate) settle(status types.ManagerStatus, err error) Result {
	if err == nil {
		if status.Allows() {
			return Result{State: enums.GateStateAuthorized, Status: status}
		}
		return Result{
			State:   enums.GateStateUnauthorized,
			Status:  status,
			Message: "account has no active manager access",
		}
	}

	if errors.Is(err, context.DeadlineExceeded) || pkgerrors.IsCode(err, pkgerrors.CodeTimeout) {
		return Result{
			State:   enums.GateStateError,
			Message: "authorization check timed out, reload to retry",
		}
	}
	if pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) || pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		return Result{
			State:   enums.GateStateUnauthorized,
			Message: "not authorized for the operations dashboard",
		}
	}
	return Result{
		State:   enums.GateStateError,
		Message: "authorization check failed, reload to retry",
	}
}
