package poller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/talgatbekov/bazarline-backend/pkg/enums"
	pkgerrors "github.com/talgatbekov/bazarline-backend/pkg/errors"
	"github.com/talgatbekov/bazarline-backend/pkg/logger"
	"github.com/talgatbekov/bazarline-backend/pkg/metrics"
	"github.com/talgatbekov/bazarline-backend/pkg/shopapi"
	"github.com/talgatbekov/bazarline-backend/pkg/types"
)

type dashboardAPI interface {
	GetOrders(ctx context.Context, filter shopapi.OrdersFilter) (*shopapi.OrderPage, error)
	GetDashboardStats(ctx context.Context, market enums.Market) (*types.DashboardStats, error)
	GetRevenueAnalytics(ctx context.Context, market enums.Market) (*types.RevenueAnalytics, error)
}

// Snapshot is the last refresh result for a manager's active view. Exactly
// one of Stats, Page, Revenue is set, matching the view.
type Snapshot struct {
	View      enums.DashboardView     `json:"view"`
	FetchedAt time.Time               `json:"fetched_at"`
	Stats     *types.DashboardStats   `json:"stats,omitempty"`
	Page      *shopapi.OrderPage      `json:"page,omitempty"`
	Revenue   *types.RevenueAnalytics `json:"revenue,omitempty"`
	Error     string                  `json:"error,omitempty"`
}

type task struct {
	cancel   context.CancelFunc
	view     enums.DashboardView
	snapshot *Snapshot
}

// Scheduler re-fetches dashboard data on a fixed interval, one task per
// manager. The task is torn down and recreated on every view or enabled
// change so a stale closure can never refresh the wrong view. Ticks are
// fire-and-forget: an outstanding fetch does not delay the next tick, and
// the last response to land wins.
type Scheduler struct {
	mu    sync.Mutex
	tasks map[string]*task

	api      dashboardAPI
	interval time.Duration
	enabled  bool
	logg     *logger.Logger
	metrics  *metrics.DashboardMetrics
}

// SchedulerParams wires the polling scheduler.
type SchedulerParams struct {
	API      dashboardAPI
	Interval time.Duration
	Enabled  bool
	Logger   *logger.Logger
	Metrics  *metrics.DashboardMetrics
}

func NewScheduler(params SchedulerParams) (*Scheduler, error) {
	if params.API == nil {
		return nil, fmt.Errorf("dashboard api required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Interval <= 0 {
		params.Interval = 30 * time.Second
	}
	return &Scheduler{
		tasks:    make(map[string]*task),
		api:      params.API,
		interval: params.Interval,
		enabled:  params.Enabled,
		logg:     params.Logger,
		metrics:  params.Metrics,
	}, nil
}

// Rearm replaces the manager's polling task for the given view. Detail and
// settings views suppress polling entirely, as does enabled=false; the old
// task is cancelled either way. The bearer token travels with the task so
// ticks can call upstream on the manager's behalf.
func (s *Scheduler) Rearm(userID, token string, market enums.Market, view enums.DashboardView, enabled bool) error {
	if !view.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown dashboard view %q", view))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.teardownLocked(userID)

	if !s.enabled || !enabled || view.SuppressesPolling() {
		return nil
	}

	ctx, cancel := context.WithCancel(shopapi.WithBearer(context.Background(), token))
	current := &task{cancel: cancel, view: view}
	s.tasks[userID] = current

	go s.run(ctx, current, market)
	return nil
}

// Stop cancels the manager's polling task. Called on teardown and logout;
// a task left ticking past that point is a leak.
func (s *Scheduler) Stop(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardownLocked(userID)
}

// Latest returns the most recent refresh result for the manager.
func (s *Scheduler) Latest(userID string) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.tasks[userID]
	if !ok || current.snapshot == nil {
		return Snapshot{}, false
	}
	return *current.snapshot, true
}

// Close cancels every task. Used on shutdown.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for userID := range s.tasks {
		s.teardownLocked(userID)
	}
}

func (s *Scheduler) teardownLocked(userID string) {
	if current, ok := s.tasks[userID]; ok {
		current.cancel()
		delete(s.tasks, userID)
	}
}

func (s *Scheduler) run(ctx context.Context, current *task, market enums.Market) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Fire and forget: a slow fetch must not block the ticker,
			// and overlapping fetches resolve last-response-wins.
			go s.fetch(ctx, current, market)
		}
	}
}

// fetch loads exactly the data for the task's view, never more than one
// surface per tick.
func (s *Scheduler) fetch(ctx context.Context, current *task, market enums.Market) {
	start := time.Now()
	snapshot := Snapshot{View: current.view}

	var err error
	switch current.view {
	case enums.DashboardViewStats:
		snapshot.Stats, err = s.api.GetDashboardStats(ctx, market)
	case enums.DashboardViewOrders:
		snapshot.Page, err = s.api.GetOrders(ctx, shopapi.OrdersFilter{Market: market})
	case enums.DashboardViewRevenue:
		snapshot.Revenue, err = s.api.GetRevenueAnalytics(ctx, market)
	default:
		return
	}

	outcome := "ok"
	if err != nil {
		if ctx.Err() != nil {
			// The task was torn down mid-fetch; drop the result.
			return
		}
		outcome = "error"
		snapshot.Error = err.Error()
		s.logg.Error(ctx, "polling refresh failed", err)
	}
	snapshot.FetchedAt = time.Now()

	s.metrics.IncPollTick(current.view.String(), outcome)
	s.metrics.ObservePollFetch(current.view.String(), time.Since(start))

	s.mu.Lock()
	current.snapshot = &snapshot
	s.mu.Unlock()
}
