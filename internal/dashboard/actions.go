package dashboard

import (
	"context"
	"fmt"

	"github.com/Xantonozar/billkhata-go/errors"
	"github.com/Xantonozar/billkhata-go/internal/optimistic"
	"github.com/Xantonozar/billkhata-go/types"
)

// Approval actions apply the expected outcome to the local collection first,
// confirm immediately via the sink, then fire the network call. A failed call
// rolls the collection back to its captured pre-image and surfaces the error.
//
// A realtime event from the server will later confirm the optimistic state or
// correct it on the next refresh.

// ApproveDeposit removes the deposit from the pending queue and confirms the
// approval server-side. Manager only.
func (e *Engine) ApproveDeposit(ctx context.Context, depositID string) error {
	if !e.user.Role.IsManager() {
		return errors.Forbidden("Manager role required", "approve deposit")
	}
	return settleStore(ctx, e, "approve_deposit", e.deposits, depositID,
		"Deposit approved",
		func(ctx context.Context) error { return e.api.ApproveDeposit(ctx, depositID) })
}

// RejectDeposit removes the deposit from the pending queue and rejects it
// server-side. Manager only.
func (e *Engine) RejectDeposit(ctx context.Context, depositID string) error {
	if !e.user.Role.IsManager() {
		return errors.Forbidden("Manager role required", "reject deposit")
	}
	return settleStore(ctx, e, "reject_deposit", e.deposits, depositID,
		"Deposit rejected",
		func(ctx context.Context) error { return e.api.RejectDeposit(ctx, depositID) })
}

// ApproveExpense removes the expense from the pending queue and confirms the
// approval server-side. Manager only.
func (e *Engine) ApproveExpense(ctx context.Context, expenseID string) error {
	if !e.user.Role.IsManager() {
		return errors.Forbidden("Manager role required", "approve expense")
	}
	return settleStore(ctx, e, "approve_expense", e.expenses, expenseID,
		"Expense approved",
		func(ctx context.Context) error { return e.api.ApproveExpense(ctx, expenseID) })
}

// RejectExpense removes the expense from the pending queue and rejects it
// server-side. Manager only.
func (e *Engine) RejectExpense(ctx context.Context, expenseID string) error {
	if !e.user.Role.IsManager() {
		return errors.Forbidden("Manager role required", "reject expense")
	}
	return settleStore(ctx, e, "reject_expense", e.expenses, expenseID,
		"Expense rejected",
		func(ctx context.Context) error { return e.api.RejectExpense(ctx, expenseID) })
}

// settleStore runs the shared remove-confirm-call-rollback sequence for queue
// style approvals. A second submission for the same id finds the item already
// gone and is a no-op.
func settleStore[T any](ctx context.Context, e *Engine, action string, store *optimistic.Store[T], id, successMsg string, call func(context.Context) error) error {
	pending, ok := store.Remove(id)
	if !ok {
		e.log.Debugw("Action target already settled", "action", action, "id", id)
		return nil
	}
	e.sink.Success(successMsg)

	if err := call(ctx); err != nil {
		pending.Rollback()
		e.metrics.rollbacks.WithLabelValues(action).Inc()
		e.sink.Error(fmt.Sprintf("%s failed, change reverted", successMsg))
		e.log.Warnw("Action failed, rolled back", "action", action, "id", id, "error", err)
		return err
	}
	pending.Commit()
	return nil
}

// ApproveMember flips a pending member to Approved in place. Manager only.
func (e *Engine) ApproveMember(ctx context.Context, memberID string) error {
	if !e.user.Role.IsManager() {
		return errors.Forbidden("Manager role required", "approve member")
	}

	member, ok := e.members.Get(memberID)
	if !ok {
		return errors.NotFound("member", memberID)
	}
	if member.RoomStatus == types.RoomStatusApproved {
		// Double approval is a no-op.
		return nil
	}

	pending, _ := e.members.Update(memberID, func(m types.Member) types.Member {
		m.RoomStatus = types.RoomStatusApproved
		return m
	})
	e.sink.Success(fmt.Sprintf("%s approved", member.Name))

	if err := e.api.ApproveMember(ctx, memberID); err != nil {
		pending.Rollback()
		e.metrics.rollbacks.WithLabelValues("approve_member").Inc()
		e.sink.Error("Member approval failed, change reverted")
		e.log.Warnw("Action failed, rolled back", "action", "approve_member", "id", memberID, "error", err)
		return err
	}
	pending.Commit()
	return nil
}

// MarkSharePaid is the member-side payment claim: their own Unpaid share
// moves to Pending Approval for a manager to confirm.
func (e *Engine) MarkSharePaid(ctx context.Context, billID string) error {
	return e.transitionShare(ctx, "mark_share_paid", billID, e.user.ID,
		types.ShareUnpaid, types.SharePendingApproval, "Payment submitted for approval")
}

// ApproveShare is the manager-side confirmation: a Pending Approval share
// becomes Paid. Manager only.
func (e *Engine) ApproveShare(ctx context.Context, billID, memberID string) error {
	if !e.user.Role.IsManager() {
		return errors.Forbidden("Manager role required", "approve payment")
	}
	return e.transitionShare(ctx, "approve_share", billID, memberID,
		types.SharePendingApproval, types.SharePaid, "Payment approved")
}

// DenyShare is the manager-side rejection: a Pending Approval share returns
// to Unpaid. Manager only.
func (e *Engine) DenyShare(ctx context.Context, billID, memberID string) error {
	if !e.user.Role.IsManager() {
		return errors.Forbidden("Manager role required", "deny payment")
	}
	return e.transitionShare(ctx, "deny_share", billID, memberID,
		types.SharePendingApproval, types.ShareUnpaid, "Payment denied")
}

func (e *Engine) transitionShare(ctx context.Context, action, billID, memberID string, from, to types.ShareStatus, successMsg string) error {
	bill, ok := e.bills.Get(billID)
	if !ok {
		return errors.NotFound("bill", billID)
	}
	share, ok := bill.ShareFor(memberID)
	if !ok {
		return errors.NotFound("bill share", fmt.Sprintf("%s/%s", billID, memberID))
	}
	if share.Status != from {
		return errors.InvalidStatusTransition(string(share.Status), string(to))
	}

	pending, _ := e.bills.Update(billID, func(b types.Bill) types.Bill {
		shares := make([]types.BillShare, len(b.Shares))
		copy(shares, b.Shares)
		for i := range shares {
			if shares[i].UserID() == memberID {
				shares[i].Status = to
			}
		}
		b.Shares = shares
		return b
	})
	e.sink.Success(successMsg)

	if err := e.api.UpdateShareStatus(ctx, billID, memberID, to); err != nil {
		pending.Rollback()
		e.metrics.rollbacks.WithLabelValues(action).Inc()
		e.sink.Error(fmt.Sprintf("%s failed, change reverted", successMsg))
		e.log.Warnw("Action failed, rolled back", "action", action, "billId", billID, "memberId", memberID, "error", err)
		return err
	}
	pending.Commit()
	return nil
}
