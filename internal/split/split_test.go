package split

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Xantonozar/billkhata-go/types"
)

var (
	alice = types.Member{ID: "a", Name: "Alice"}
	bob   = types.Member{ID: "b", Name: "Bob"}
	carol = types.Member{ID: "c", Name: "Carol"}
)

func TestEqualSplit(t *testing.T) {
	b := NewBuilder(900)
	b.Select(alice)
	b.Select(bob)
	b.Select(carol)

	shares, err := b.Build()
	require.NoError(t, err)
	require.Len(t, shares, 3)

	for _, s := range shares {
		assert.InDelta(t, 300, s.Amount, 0.001)
		assert.Equal(t, types.ShareUnpaid, s.Status)
	}
	assert.Equal(t, "a", shares[0].UserID())
	assert.Equal(t, "Alice", shares[0].UserName)
}

func TestEqualSplitUnevenTotal(t *testing.T) {
	b := NewBuilder(100)
	b.Select(alice)
	b.Select(bob)
	b.Select(carol)

	shares, err := b.Build()
	require.NoError(t, err)

	sum := 0.0
	for _, s := range shares {
		sum += s.Amount
	}
	assert.InDelta(t, 100, sum, 0.001, "shares must sum back to the total")
}

func TestCustomSplit(t *testing.T) {
	b := NewBuilder(900)
	b.Select(alice)
	b.Select(bob)
	b.SetMode(ModeCustom)
	b.SetCustomAmount("a", 600)
	b.SetCustomAmount("b", 300)

	shares, err := b.Build()
	require.NoError(t, err)
	assert.InDelta(t, 600, shares[0].Amount, 0.001)
	assert.InDelta(t, 300, shares[1].Amount, 0.001)
}

func TestCustomSplitToleranceOneTaka(t *testing.T) {
	tests := []struct {
		name    string
		amounts [2]float64
		wantErr bool
	}{
		{name: "exact", amounts: [2]float64{600, 300}, wantErr: false},
		{name: "within one taka under", amounts: [2]float64{600, 299.10}, wantErr: false},
		{name: "within one taka over", amounts: [2]float64{600, 300.90}, wantErr: false},
		{name: "more than one taka off", amounts: [2]float64{600, 298.50}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder(900)
			b.Select(alice)
			b.Select(bob)
			b.SetMode(ModeCustom)
			b.SetCustomAmount("a", tt.amounts[0])
			b.SetCustomAmount("b", tt.amounts[1])

			_, err := b.Build()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCustomSplitMissingAmount(t *testing.T) {
	b := NewBuilder(900)
	b.Select(alice)
	b.SetMode(ModeCustom)
	delete(b.custom, "a") // simulate a member whose field was never filled

	_, err := b.Build()
	assert.Error(t, err)
}

func TestSwitchToCustomSeedsEqualDefaults(t *testing.T) {
	b := NewBuilder(900)
	b.Select(alice)
	b.Select(bob)
	b.Select(carol)
	b.SetCustomAmount("a", 500) // edited before switching
	b.SetMode(ModeCustom)

	// Alice keeps her edit; Bob and Carol are seeded with the equal default.
	assert.InDelta(t, 500, b.custom["a"].Float64(), 0.001)
	assert.InDelta(t, 300, b.custom["b"].Float64(), 0.001)
	assert.InDelta(t, 300, b.custom["c"].Float64(), 0.001)
}

func TestSelectInCustomModeSeedsNewMember(t *testing.T) {
	b := NewBuilder(600)
	b.Select(alice)
	b.SetMode(ModeCustom)
	b.SetCustomAmount("a", 400)
	b.Select(bob)

	shares, err := b.Build()
	require.Error(t, err) // 400 + seed does not balance; inspect the builder instead
	assert.Nil(t, shares)

	seeded, ok := b.custom["b"]
	require.True(t, ok)
	assert.False(t, seeded.IsZero())
}

func TestDoubleSelectIsNoOp(t *testing.T) {
	b := NewBuilder(600)
	b.Select(alice)
	b.Select(alice)

	shares, err := b.Build()
	require.NoError(t, err)
	assert.Len(t, shares, 1)
	assert.InDelta(t, 600, shares[0].Amount, 0.001)
}

func TestBuildValidation(t *testing.T) {
	_, err := NewBuilder(900).Build()
	assert.Error(t, err, "no members selected")

	b := NewBuilder(0)
	b.Select(alice)
	_, err = b.Build()
	assert.Error(t, err, "total must be positive")

	b = NewBuilder(-50)
	b.Select(alice)
	_, err = b.Build()
	assert.Error(t, err)
}

func TestFromSharesRederivesMode(t *testing.T) {
	members := []types.Member{alice, bob, carol}

	equal := types.Bill{
		TotalAmount: 100,
		Shares: []types.BillShare{
			{User: types.UserRef{UserID: "a"}, Amount: 33.34},
			{User: types.UserRef{UserID: "b"}, Amount: 33.33},
			{User: types.UserRef{UserID: "c"}, Amount: 33.33},
		},
	}
	assert.Equal(t, ModeEqual, FromShares(equal, members).Mode())

	custom := types.Bill{
		TotalAmount: 900,
		Shares: []types.BillShare{
			{User: types.UserRef{UserID: "a"}, Amount: 600},
			{User: types.UserRef{UserID: "b"}, Amount: 300},
		},
	}
	b := FromShares(custom, members)
	assert.Equal(t, ModeCustom, b.Mode())

	shares, err := b.Build()
	require.NoError(t, err)
	assert.InDelta(t, 600, shares[0].Amount, 0.001)

	single := types.Bill{
		TotalAmount: 100,
		Shares: []types.BillShare{
			{User: types.UserRef{UserID: "a"}, Amount: 100},
		},
	}
	assert.Equal(t, ModeCustom, FromShares(single, members).Mode())
}

func TestFromSharesUnknownMemberKeepsName(t *testing.T) {
	bill := types.Bill{
		TotalAmount: 100,
		Shares: []types.BillShare{
			{User: types.UserRef{UserID: "gone"}, UserName: "Departed", Amount: 100},
		},
	}

	b := FromShares(bill, nil)
	shares, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, "Departed", shares[0].UserName)
}
