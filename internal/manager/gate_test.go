package manager

import (
	"context"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/talgatbekov/bazarline-backend/pkg/enums"
	pkgerrors "github.com/talgatbekov/bazarline-backend/pkg/errors"
	"github.com/talgatbekov/bazarline-backend/pkg/logger"
	"github.com/talgatbekov/bazarline-backend/pkg/types"
)

type fakeStatusAPI struct {
	checkFn func(ctx context.Context) (types.ManagerStatus, error)
	calls   atomic.Int32
}

func (f *fakeStatusAPI) CheckManagerStatus(ctx context.Context) (types.ManagerStatus, error) {
	f.calls.Add(1)
	return f.checkFn(ctx)
}

func newTestGate(t *testing.T, api *fakeStatusAPI, timeout time.Duration) *Gate {
	t.Helper()
	gate, err := NewGate(GateParams{
		API:     api,
		Timeout: timeout,
		Logger:  logger.New(logger.Options{ServiceName: "gate-test", Output: io.Discard}),
	})
	if err != nil {
		t.Fatalf("new gate: %v", err)
	}
	return gate
}

func activeManager() types.ManagerStatus {
	return types.ManagerStatus{
		IsManager:         true,
		IsActive:          true,
		Role:              "manager",
		AccessibleMarkets: []enums.Market{enums.MarketDomestic},
	}
}

func TestEvaluateAuthorizes(t *testing.T) {
	api := &fakeStatusAPI{checkFn: func(context.Context) (types.ManagerStatus, error) {
		return activeManager(), nil
	}}
	gate := newTestGate(t, api, time.Second)

	result := gate.Evaluate(context.Background(), "u-1", "jti-1")
	if result.State != enums.GateStateAuthorized {
		t.Fatalf("state = %q, want authorized", result.State)
	}
	if !result.Status.CanAccessMarket(enums.MarketDomestic) {
		t.Fatalf("expected market access, got %+v", result.Status)
	}
}

func TestEvaluateCachesPerAuthSession(t *testing.T) {
	api := &fakeStatusAPI{checkFn: func(context.Context) (types.ManagerStatus, error) {
		return activeManager(), nil
	}}
	gate := newTestGate(t, api, time.Second)
	ctx := context.Background()

	gate.Evaluate(ctx, "u-1", "jti-1")
	gate.Evaluate(ctx, "u-1", "jti-1")
	gate.Evaluate(ctx, "u-1", "jti-1")

	if api.calls.Load() != 1 {
		t.Fatalf("expected one check per auth session, got %d", api.calls.Load())
	}
}

func TestEvaluateRechecksOnAuthChange(t *testing.T) {
	api := &fakeStatusAPI{checkFn: func(context.Context) (types.ManagerStatus, error) {
		return activeManager(), nil
	}}
	gate := newTestGate(t, api, time.Second)
	ctx := context.Background()

	gate.Evaluate(ctx, "u-1", "jti-1")
	result := gate.Evaluate(ctx, "u-1", "jti-2")

	if result.State != enums.GateStateAuthorized {
		t.Fatalf("state = %q, want authorized", result.State)
	}
	if api.calls.Load() != 2 {
		t.Fatalf("auth change must force a fresh check, got %d calls", api.calls.Load())
	}
}

func TestEvaluateSingleFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	api := &fakeStatusAPI{checkFn: func(context.Context) (types.ManagerStatus, error) {
		close(started)
		<-release
		return activeManager(), nil
	}}
	gate := newTestGate(t, api, time.Second)
	ctx := context.Background()

	first := make(chan Result, 1)
	go func() {
		first <- gate.Evaluate(ctx, "u-1", "jti-1")
	}()

	<-started
	dropped := gate.Evaluate(ctx, "u-1", "jti-1")
	if dropped.State != enums.GateStateChecking {
		t.Fatalf("concurrent trigger must report checking, got %q", dropped.State)
	}

	close(release)
	result := <-first
	if result.State != enums.GateStateAuthorized {
		t.Fatalf("state = %q, want authorized", result.State)
	}
	if api.calls.Load() != 1 {
		t.Fatalf("expected exactly one check in flight, got %d", api.calls.Load())
	}
}

func TestEvaluateTimeoutSettlesAsErrorAndAllowsRetry(t *testing.T) {
	api := &fakeStatusAPI{checkFn: func(ctx context.Context) (types.ManagerStatus, error) {
		<-ctx.Done()
		return types.ManagerStatus{}, ctx.Err()
	}}
	gate := newTestGate(t, api, 20*time.Millisecond)
	ctx := context.Background()

	result := gate.Evaluate(ctx, "u-1", "jti-1")
	if result.State != enums.GateStateError {
		t.Fatalf("state = %q, want error", result.State)
	}

	// The in-flight marker is cleared: a new trigger runs a fresh check.
	api.checkFn = func(context.Context) (types.ManagerStatus, error) {
		return activeManager(), nil
	}
	retried := gate.Evaluate(ctx, "u-1", "jti-1")
	if retried.State != enums.GateStateAuthorized {
		t.Fatalf("retry after timeout failed: %+v", retried)
	}
	if api.calls.Load() != 2 {
		t.Fatalf("expected 2 checks, got %d", api.calls.Load())
	}
}

func TestEvaluateInactiveManagerIsUnauthorized(t *testing.T) {
	api := &fakeStatusAPI{checkFn: func(context.Context) (types.ManagerStatus, error) {
		return types.ManagerStatus{IsManager: true, IsActive: false}, nil
	}}
	gate := newTestGate(t, api, time.Second)

	result := gate.Evaluate(context.Background(), "u-1", "jti-1")
	if result.State != enums.GateStateUnauthorized {
		t.Fatalf("state = %q, want unauthorized", result.State)
	}

	// Unauthorized sticks for the auth session.
	gate.Evaluate(context.Background(), "u-1", "jti-1")
	if api.calls.Load() != 1 {
		t.Fatalf("unauthorized must be cached, got %d calls", api.calls.Load())
	}
}

func TestEvaluateUnauthenticatedIsUnauthorized(t *testing.T) {
	api := &fakeStatusAPI{checkFn: func(context.Context) (types.ManagerStatus, error) {
		return types.ManagerStatus{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}}
	gate := newTestGate(t, api, time.Second)

	result := gate.Evaluate(context.Background(), "u-1", "jti-1")
	if result.State != enums.GateStateUnauthorized {
		t.Fatalf("state = %q, want unauthorized", result.State)
	}
}

func TestEvaluateTransportErrorRetriesNextTrigger(t *testing.T) {
	api := &fakeStatusAPI{checkFn: func(context.Context) (types.ManagerStatus, error) {
		return types.ManagerStatus{}, pkgerrors.New(pkgerrors.CodeDependency, "upstream down")
	}}
	gate := newTestGate(t, api, time.Second)
	ctx := context.Background()

	result := gate.Evaluate(ctx, "u-1", "jti-1")
	if result.State != enums.GateStateError {
		t.Fatalf("state = %q, want error", result.State)
	}

	gate.Evaluate(ctx, "u-1", "jti-1")
	if api.calls.Load() != 2 {
		t.Fatalf("error outcome must allow retry, got %d calls", api.calls.Load())
	}
}

func TestPeekDoesNotTrigger(t *testing.T) {
	api := &fakeStatusAPI{checkFn: func(context.Context) (types.ManagerStatus, error) {
		return activeManager(), nil
	}}
	gate := newTestGate(t, api, time.Second)

	result := gate.Peek("u-1", "jti-1")
	if result.State != enums.GateStateUnchecked {
		t.Fatalf("state = %q, want unchecked", result.State)
	}
	if api.calls.Load() != 0 {
		t.Fatalf("peek must not call the api, got %d calls", api.calls.Load())
	}
}

func TestResetForcesFreshEvaluation(t *testing.T) {
	api := &fakeStatusAPI{checkFn: func(context.Context) (types.ManagerStatus, error) {
		return activeManager(), nil
	}}
	gate := newTestGate(t, api, time.Second)
	ctx := context.Background()

	gate.Evaluate(ctx, "u-1", "jti-1")
	gate.Reset("u-1")

	if result := gate.Peek("u-1", "jti-1"); result.State != enums.GateStateUnchecked {
		t.Fatalf("state = %q, want unchecked after reset", result.State)
	}

	gate.Evaluate(ctx, "u-1", "jti-1")
	if api.calls.Load() != 2 {
		t.Fatalf("expected fresh check after reset, got %d calls", api.calls.Load())
	}
}
