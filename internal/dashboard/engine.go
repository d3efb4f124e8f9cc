// Package dashboard runs the per-page derivation pipeline: fetch the room's
// collections for the selected period, aggregate them into summaries, and
// keep the result fresh as realtime invalidation events arrive. Approval
// actions run through the optimistic store so a rejected mutation never
// leaves a persisted-looking state behind.
package dashboard

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Xantonozar/billkhata-go/errors"
	"github.com/Xantonozar/billkhata-go/internal/aggregate"
	"github.com/Xantonozar/billkhata-go/internal/optimistic"
	"github.com/Xantonozar/billkhata-go/internal/period"
	"github.com/Xantonozar/billkhata-go/logger"
	"github.com/Xantonozar/billkhata-go/types"
)

// API is the slice of the BillKhata client the engine consumes. Declared here
// so tests can substitute a fake.
type API interface {
	ListBills(ctx context.Context, khataID string, status types.ShareStatus) ([]types.Bill, error)
	ListDeposits(ctx context.Context, khataID string, status types.ApprovalStatus) ([]types.Deposit, error)
	ListExpenses(ctx context.Context, khataID string, status types.ApprovalStatus) ([]types.Expense, error)
	ListMeals(ctx context.Context, khataID string, start, end time.Time) ([]types.MealRecord, error)
	ListMembers(ctx context.Context, khataID string) ([]types.Member, error)

	UpdateShareStatus(ctx context.Context, billID, userID string, status types.ShareStatus) error
	ApproveDeposit(ctx context.Context, depositID string) error
	RejectDeposit(ctx context.Context, depositID string) error
	ApproveExpense(ctx context.Context, expenseID string) error
	RejectExpense(ctx context.Context, expenseID string) error
	ApproveMember(ctx context.Context, memberID string) error
}

// Snapshot is one period's fetched collections plus the summaries derived
// from them.
type Snapshot struct {
	Period    period.Period
	Data      aggregate.Collections
	Monthly   types.MonthlySummary
	Members   []types.MemberSummary
	FetchedAt time.Time
}

// Engine drives the pipeline for one room on behalf of one user.
type Engine struct {
	api     API
	log     *zap.SugaredLogger
	metrics *engineMetrics
	user    types.CurrentUser
	sink    types.NotificationSink

	mu       sync.RWMutex
	current  period.Period
	snapshot *Snapshot

	// Local collection state for optimistic approval actions.
	bills    *optimistic.Store[types.Bill]
	deposits *optimistic.Store[types.Deposit]
	expenses *optimistic.Store[types.Expense]
	members  *optimistic.Store[types.Member]
}

// NewEngine creates an engine for the user's room, initially scoped to the
// calendar month containing now.
func NewEngine(api API, user types.CurrentUser, sink types.NotificationSink) *Engine {
	return &Engine{
		api:      api,
		log:      logger.GetLogger().Named("dashboard"),
		metrics:  newMetrics(),
		user:     user,
		sink:     sink,
		current:  period.MonthOf(time.Now()),
		bills:    optimistic.NewStore(func(b types.Bill) string { return b.ID }, nil),
		deposits: optimistic.NewStore(func(d types.Deposit) string { return d.ID }, nil),
		expenses: optimistic.NewStore(func(e types.Expense) string { return e.ID }, nil),
		members:  optimistic.NewStore(func(m types.Member) string { return m.ID }, nil),
	}
}

// SetPeriod changes the selected period. In-flight refreshes for the old
// period are discarded when they complete.
func (e *Engine) SetPeriod(p period.Period) {
	e.mu.Lock()
	e.current = p
	e.mu.Unlock()
}

// Period returns the currently selected period.
func (e *Engine) Period() period.Period {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.current
}

// Snapshot returns the most recent completed snapshot, nil before the first
// refresh.
func (e *Engine) Snapshot() *Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshot
}

// Refresh fetches all collections for the selected period concurrently and
// recomputes the summaries. The fetch is tagged with the period key it was
// issued for: if the selected period changes while the fetch is in flight,
// the completed result is discarded rather than overwriting newer state.
func (e *Engine) Refresh(ctx context.Context) (*Snapshot, error) {
	e.mu.RLock()
	p := e.current
	e.mu.RUnlock()
	tag := p.Key()

	start := time.Now()
	khataID := e.user.KhataID

	var data aggregate.Collections
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		bills, err := e.api.ListBills(gctx, khataID, "")
		data.Bills = bills
		return err
	})
	g.Go(func() error {
		deposits, err := e.api.ListDeposits(gctx, khataID, "")
		data.Deposits = deposits
		return err
	})
	g.Go(func() error {
		expenses, err := e.api.ListExpenses(gctx, khataID, "")
		data.Expenses = expenses
		return err
	})
	g.Go(func() error {
		meals, err := e.api.ListMeals(gctx, khataID, p.Start, p.End)
		data.Meals = meals
		return err
	})
	g.Go(func() error {
		members, err := e.api.ListMembers(gctx, khataID)
		data.Members = members
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	e.metrics.fetchLatency.Observe(time.Since(start).Seconds())

	// Bills, deposits and expenses arrive unscoped; restrict them to the
	// period client-side. Meals were range-queried already.
	data.Bills = period.FilterBills(data.Bills, p)
	data.Deposits = period.FilterDeposits(data.Deposits, p)
	data.Expenses = period.FilterExpenses(data.Expenses, p)

	snap := &Snapshot{
		Period:    p,
		Data:      data,
		Monthly:   aggregate.MonthlySummary(data),
		Members:   aggregate.MemberSummaries(data),
		FetchedAt: time.Now(),
	}

	e.mu.Lock()
	if e.current.Key() != tag {
		currentTag := e.current.Key()
		e.mu.Unlock()
		e.metrics.staleDiscards.Inc()
		e.log.Infow("Discarding stale refresh", "fetched", tag, "current", currentTag)
		return nil, errors.StaleResponse(tag, currentTag)
	}
	e.snapshot = snap
	e.mu.Unlock()

	e.bills.Replace(data.Bills)
	e.deposits.Replace(data.Deposits)
	e.expenses.Replace(data.Expenses)
	e.members.Replace(data.Members)

	e.metrics.refreshes.Inc()
	e.log.Debugw("Refresh complete",
		"period", tag,
		"bills", len(data.Bills),
		"deposits", len(data.Deposits),
		"expenses", len(data.Expenses),
		"meals", len(data.Meals),
		"members", len(data.Members))
	return snap, nil
}

// Punctuality fetches the trailing window's bills and ranks members by the
// percentage of their shares paid. The window is expressed in calendar
// months (1, 3, 6, or 12).
func (e *Engine) Punctuality(ctx context.Context, months int) ([]types.PunctualityEntry, error) {
	window := period.Trailing(time.Now(), months)

	var (
		bills   []types.Bill
		members []types.Member
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		bills, err = e.api.ListBills(gctx, e.user.KhataID, "")
		return err
	})
	g.Go(func() error {
		var err error
		members, err = e.api.ListMembers(gctx, e.user.KhataID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return aggregate.PunctualityLeaderboard(period.FilterBills(bills, window), members), nil
}

// refreshTick bounds how stale a snapshot can get when no realtime event
// arrives, e.g. after dropped events on a full buffer.
const refreshTick = 5 * time.Minute

// Run subscribes to the room and user topics and refreshes on every event
// until the context is cancelled. Every push event is an invalidation
// signal, not a delta: the payload is never inspected.
func (e *Engine) Run(ctx context.Context, sub types.Subscriber) error {
	roomCh, err := sub.Subscribe(ctx, types.RoomTopic(e.user.KhataID), e.user.ID)
	if err != nil {
		return errors.Wrap(err, errors.RealtimeError, "room subscription failed")
	}
	userCh, err := sub.Subscribe(ctx, types.UserTopic(e.user.ID), e.user.ID)
	if err != nil {
		return errors.Wrap(err, errors.RealtimeError, "user subscription failed")
	}

	if _, err := e.Refresh(ctx); err != nil {
		e.log.Warnw("Initial refresh failed", "error", err)
	}

	ticker := time.NewTicker(refreshTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := e.Refresh(ctx); err != nil {
				e.log.Warnw("Periodic refresh failed", "error", err)
			}
		case event, ok := <-roomCh:
			if !ok {
				return errors.New(errors.RealtimeError, "room channel closed", "")
			}
			e.invalidate(ctx, event)
		case event, ok := <-userCh:
			if !ok {
				return errors.New(errors.RealtimeError, "user channel closed", "")
			}
			e.invalidate(ctx, event)
		}
	}
}

func (e *Engine) invalidate(ctx context.Context, event types.RealtimeEvent) {
	e.log.Debugw("Realtime event received", "type", event.Type, "khataId", event.KhataID)
	if _, err := e.Refresh(ctx); err != nil {
		var appErr *errors.AppError
		if stderrors.As(err, &appErr) && appErr.Type == errors.StaleResponseError {
			return
		}
		e.log.Warnw("Refresh after realtime event failed", "error", err)
	}
}
