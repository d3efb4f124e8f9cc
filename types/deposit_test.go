package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDepositDecodeDropsMalformedCreatedAt(t *testing.T) {
	payload := `[
		{"_id": "d1", "userId": "alice", "amount": 500, "status": "Approved", "createdAt": "2026-09-02T08:00:00Z"},
		{"_id": "d2", "userId": "bob", "amount": 300, "status": "Approved", "createdAt": "yesterday"}
	]`

	var deposits []Deposit
	require.NoError(t, json.Unmarshal([]byte(payload), &deposits))
	require.Len(t, deposits, 2)

	assert.False(t, deposits[0].CreatedAt.IsZero())
	assert.True(t, deposits[1].CreatedAt.IsZero(), "malformed createdAt decodes to the zero time")
	assert.Equal(t, "d2", deposits[1].ID, "the rest of the record still decodes")
}

func TestExpenseDecodeDropsMalformedCreatedAt(t *testing.T) {
	var e Expense
	require.NoError(t, json.Unmarshal([]byte(
		`{"_id": "e1", "userId": "alice", "amount": 120.5, "status": "Pending", "createdAt": null}`,
	), &e))

	assert.Equal(t, "e1", e.ID)
	assert.True(t, e.CreatedAt.IsZero())
	assert.InDelta(t, 120.5, e.Amount, 0.001)
}
