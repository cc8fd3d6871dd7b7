package poller

import (
	"context"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/talgatbekov/bazarline-backend/pkg/enums"
	"github.com/talgatbekov/bazarline-backend/pkg/logger"
	"github.com/talgatbekov/bazarline-backend/pkg/shopapi"
	"github.com/talgatbekov/bazarline-backend/pkg/types"
)

type fakeDashboardAPI struct {
	statsCalls   atomic.Int32
	ordersCalls  atomic.Int32
	revenueCalls atomic.Int32
}

func (f *fakeDashboardAPI) GetOrders(context.Context, shopapi.OrdersFilter) (*shopapi.OrderPage, error) {
	f.ordersCalls.Add(1)
	return &shopapi.OrderPage{Total: 2}, nil
}

func (f *fakeDashboardAPI) GetDashboardStats(context.Context, enums.Market) (*types.DashboardStats, error) {
	f.statsCalls.Add(1)
	return &types.DashboardStats{TotalOrders: 5}, nil
}

func (f *fakeDashboardAPI) GetRevenueAnalytics(context.Context, enums.Market) (*types.RevenueAnalytics, error) {
	f.revenueCalls.Add(1)
	return &types.RevenueAnalytics{Total: 9000}, nil
}

func newTestScheduler(t *testing.T, api *fakeDashboardAPI) *Scheduler {
	t.Helper()
	scheduler, err := NewScheduler(SchedulerParams{
		API:      api,
		Interval: 10 * time.Millisecond,
		Enabled:  true,
		Logger:   logger.New(logger.Options{ServiceName: "poller-test", Output: io.Discard}),
	})
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	t.Cleanup(scheduler.Close)
	return scheduler
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestRearmTicksActiveViewOnly(t *testing.T) {
	api := &fakeDashboardAPI{}
	scheduler := newTestScheduler(t, api)

	if err := scheduler.Rearm("m-1", "tok", enums.MarketDomestic, enums.DashboardViewStats, true); err != nil {
		t.Fatalf("rearm failed: %v", err)
	}

	waitFor(t, time.Second, func() bool { return api.statsCalls.Load() >= 2 })

	if api.ordersCalls.Load() != 0 || api.revenueCalls.Load() != 0 {
		t.Fatalf("ticks must fetch exactly the active view, got orders=%d revenue=%d",
			api.ordersCalls.Load(), api.revenueCalls.Load())
	}

	snapshot, ok := scheduler.Latest("m-1")
	if !ok || snapshot.View != enums.DashboardViewStats || snapshot.Stats == nil {
		t.Fatalf("unexpected snapshot %+v ok=%v", snapshot, ok)
	}
	if snapshot.Page != nil || snapshot.Revenue != nil {
		t.Fatalf("snapshot must carry only the active view's data: %+v", snapshot)
	}
}

func TestRearmReplacesTask(t *testing.T) {
	api := &fakeDashboardAPI{}
	scheduler := newTestScheduler(t, api)

	if err := scheduler.Rearm("m-1", "tok", enums.MarketDomestic, enums.DashboardViewStats, true); err != nil {
		t.Fatalf("rearm failed: %v", err)
	}
	waitFor(t, time.Second, func() bool { return api.statsCalls.Load() >= 1 })

	if err := scheduler.Rearm("m-1", "tok", enums.MarketDomestic, enums.DashboardViewOrders, true); err != nil {
		t.Fatalf("rearm failed: %v", err)
	}
	waitFor(t, time.Second, func() bool { return api.ordersCalls.Load() >= 1 })

	// The old task is gone: stats calls stop growing.
	settled := api.statsCalls.Load()
	time.Sleep(50 * time.Millisecond)
	if api.statsCalls.Load() > settled+1 {
		t.Fatalf("old task kept ticking after rearm: %d -> %d", settled, api.statsCalls.Load())
	}
}

func TestSuppressedViewsDoNotTick(t *testing.T) {
	for _, view := range []enums.DashboardView{enums.DashboardViewOrderDetail, enums.DashboardViewSettings} {
		t.Run(view.String(), func(t *testing.T) {
			api := &fakeDashboardAPI{}
			scheduler := newTestScheduler(t, api)

			if err := scheduler.Rearm("m-1", "tok", enums.MarketDomestic, view, true); err != nil {
				t.Fatalf("rearm failed: %v", err)
			}
			time.Sleep(50 * time.Millisecond)

			total := api.statsCalls.Load() + api.ordersCalls.Load() + api.revenueCalls.Load()
			if total != 0 {
				t.Fatalf("suppressed view must not fetch, got %d calls", total)
			}
		})
	}
}

func TestDisabledPollingDoesNotTick(t *testing.T) {
	api := &fakeDashboardAPI{}
	scheduler := newTestScheduler(t, api)

	if err := scheduler.Rearm("m-1", "tok", enums.MarketDomestic, enums.DashboardViewStats, false); err != nil {
		t.Fatalf("rearm failed: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	if api.statsCalls.Load() != 0 {
		t.Fatalf("disabled polling must not fetch, got %d calls", api.statsCalls.Load())
	}
}

func TestStopCancelsTask(t *testing.T) {
	api := &fakeDashboardAPI{}
	scheduler := newTestScheduler(t, api)

	if err := scheduler.Rearm("m-1", "tok", enums.MarketDomestic, enums.DashboardViewRevenue, true); err != nil {
		t.Fatalf("rearm failed: %v", err)
	}
	waitFor(t, time.Second, func() bool { return api.revenueCalls.Load() >= 1 })

	scheduler.Stop("m-1")
	settled := api.revenueCalls.Load()
	time.Sleep(50 * time.Millisecond)
	if api.revenueCalls.Load() > settled+1 {
		t.Fatalf("task kept ticking after stop: %d -> %d", settled, api.revenueCalls.Load())
	}

	if _, ok := scheduler.Latest("m-1"); ok {
		t.Fatal("stopped task must not report a snapshot")
	}
}

func TestRearmRejectsUnknownView(t *testing.T) {
	scheduler := newTestScheduler(t, &fakeDashboardAPI{})

	if err := scheduler.Rearm("m-1", "tok", enums.MarketDomestic, enums.DashboardView("lobby"), true); err == nil {
		t.Fatal("expected unknown view to be rejected")
	}
}
