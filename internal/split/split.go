// Package split implements bill share construction for the create/edit bill
// flows: equal division with fair paisa distribution, custom per-member
// amounts with submit-time validation, and re-derivation of the split mode
// from persisted shares when editing.
package split

import (
	"fmt"

	"github.com/Xantonozar/billkhata-go/errors"
	"github.com/Xantonozar/billkhata-go/pkg/valueobjects"
	"github.com/Xantonozar/billkhata-go/types"
)

// Mode selects how a bill's total is divided among selected members.
type Mode string

const (
	ModeEqual  Mode = "EQUAL"
	ModeCustom Mode = "CUSTOM"
)

// Builder accumulates the state of a split-bill form: the total, the selected
// members, the mode, and any custom per-member amounts.
type Builder struct {
	total    valueobjects.Money
	mode     Mode
	selected []types.Member
	custom   map[string]valueobjects.Money
}

// NewBuilder starts an equal split for the given total.
func NewBuilder(total float64) *Builder {
	return &Builder{
		total:  valueobjects.NewFromFloat(total),
		mode:   ModeEqual,
		custom: make(map[string]valueobjects.Money),
	}
}

// FromShares reconstructs a builder from a persisted bill, re-deriving the
// split mode: all share amounts equal within 0.01 with more than one share
// classifies as EQUAL, anything else as CUSTOM with the custom map seeded
// from the existing shares.
func FromShares(bill types.Bill, members []types.Member) *Builder {
	b := NewBuilder(bill.TotalAmount)
	byID := make(map[string]types.Member, len(members))
	for _, m := range members {
		byID[m.ID] = m
	}

	for _, share := range bill.Shares {
		member, ok := byID[share.UserID()]
		if !ok {
			member = types.Member{ID: share.UserID(), Name: share.DisplayName()}
		}
		b.selected = append(b.selected, member)
		b.custom[member.ID] = valueobjects.NewFromFloat(share.Amount)
	}

	b.mode = classify(bill.Shares)
	if b.mode == ModeEqual {
		b.custom = make(map[string]valueobjects.Money)
	}
	return b
}

func classify(shares []types.BillShare) Mode {
	if len(shares) < 2 {
		return ModeCustom
	}
	first := valueobjects.NewFromFloat(shares[0].Amount)
	for _, s := range shares[1:] {
		if !first.WithinPaisa(valueobjects.NewFromFloat(s.Amount)) {
			return ModeCustom
		}
	}
	return ModeEqual
}

// Mode returns the current split mode.
func (b *Builder) Mode() Mode {
	return b.mode
}

// Select adds a member to the split. In custom mode a newly selected member
// is seeded with the equal-split default; amounts already edited are not
// touched.
func (b *Builder) Select(member types.Member) {
	for _, m := range b.selected {
		if m.ID == member.ID {
			return
		}
	}
	b.selected = append(b.selected, member)
	if b.mode == ModeCustom {
		if _, edited := b.custom[member.ID]; !edited {
			b.custom[member.ID] = b.PerPerson()
		}
	}
}

// Deselect removes a member and their custom amount.
func (b *Builder) Deselect(memberID string) {
	for i, m := range b.selected {
		if m.ID == memberID {
			b.selected = append(b.selected[:i], b.selected[i+1:]...)
			break
		}
	}
	delete(b.custom, memberID)
}

// SetMode switches between equal and custom. Switching to custom seeds every
// member that has no edited amount with the equal split as a starting point,
// preserving amounts the user already entered.
func (b *Builder) SetMode(mode Mode) {
	if b.mode == mode {
		return
	}
	b.mode = mode
	if mode == ModeCustom {
		per := b.PerPerson()
		for _, m := range b.selected {
			if _, edited := b.custom[m.ID]; !edited {
				b.custom[m.ID] = per
			}
		}
	}
}

// SetCustomAmount records a user-edited amount for one member.
func (b *Builder) SetCustomAmount(memberID string, amount float64) {
	b.custom[memberID] = valueobjects.NewFromFloat(amount)
}

// PerPerson returns the equal-mode amount per selected member: zero when
// nobody is selected, never a division error.
func (b *Builder) PerPerson() valueobjects.Money {
	n := len(b.selected)
	if n == 0 {
		return valueobjects.Zero()
	}
	parts, err := b.total.Split(n)
	if err != nil || len(parts) == 0 {
		return valueobjects.Zero()
	}
	return parts[0]
}

// Build validates the form and emits the shares, every one Unpaid. Custom
// amounts must sum to the total within one Taka or the whole submission is
// rejected; there is no partial submission.
func (b *Builder) Build() ([]types.BillShare, error) {
	if len(b.selected) == 0 {
		return nil, errors.ValidationFailed("no members selected", "a bill needs at least one share")
	}
	if !b.total.IsPositive() {
		return nil, errors.ValidationFailed("invalid total", "bill total must be positive")
	}

	switch b.mode {
	case ModeEqual:
		parts, err := b.total.Split(len(b.selected))
		if err != nil {
			return nil, errors.Wrap(err, errors.ValidationError, "could not divide bill")
		}
		shares := make([]types.BillShare, len(b.selected))
		for i, m := range b.selected {
			shares[i] = types.BillShare{
				User:     types.UserRef{UserID: m.ID, Name: m.Name},
				UserName: m.Name,
				Amount:   parts[i].Float64(),
				Status:   types.ShareUnpaid,
			}
		}
		return shares, nil

	case ModeCustom:
		amounts := make([]float64, len(b.selected))
		shares := make([]types.BillShare, len(b.selected))
		for i, m := range b.selected {
			amount, ok := b.custom[m.ID]
			if !ok {
				return nil, errors.ValidationFailed(
					"missing custom amount",
					fmt.Sprintf("no amount entered for %s", m.Name),
				)
			}
			amounts[i] = amount.Float64()
			shares[i] = types.BillShare{
				User:     types.UserRef{UserID: m.ID, Name: m.Name},
				UserName: m.Name,
				Amount:   amounts[i],
				Status:   types.ShareUnpaid,
			}
		}
		if sum := valueobjects.Sum(amounts); !sum.WithinTaka(b.total) {
			return nil, errors.ValidationFailed(
				"custom split does not balance",
				fmt.Sprintf("amounts sum to %s but the bill total is %s", sum, b.total),
			)
		}
		return shares, nil

	default:
		return nil, errors.ValidationFailed("unknown split mode", string(b.mode))
	}
}
