package optimistic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID     string
	Status string
}

func newTestStore(ids ...string) *Store[record] {
	items := make([]record, 0, len(ids))
	for _, id := range ids {
		items = append(items, record{ID: id, Status: "Pending"})
	}
	return NewStore(func(r record) string { return r.ID }, items)
}

func TestRemoveCommit(t *testing.T) {
	s := newTestStore("1", "2", "3")

	pending, ok := s.Remove("2")
	require.True(t, ok)
	assert.Equal(t, 2, s.Len())

	pending.Commit()
	assert.Equal(t, 2, s.Len())
	_, found := s.Get("2")
	assert.False(t, found)
}

func TestRemoveRollbackRestoresOrder(t *testing.T) {
	s := newTestStore("1", "2", "3")

	pending, ok := s.Remove("2")
	require.True(t, ok)

	pending.Rollback()

	// The collection equals its pre-action state, original position included.
	items := s.Items()
	require.Len(t, items, 3)
	assert.Equal(t, []string{"1", "2", "3"}, []string{items[0].ID, items[1].ID, items[2].ID})
}

func TestRemoveAbsentIsNoOp(t *testing.T) {
	s := newTestStore("1")

	// A second submission finds the item already gone.
	first, ok := s.Remove("1")
	require.True(t, ok)
	_, ok = s.Remove("1")
	assert.False(t, ok)

	first.Commit()
	assert.Zero(t, s.Len())
}

func TestUpdateRollback(t *testing.T) {
	s := newTestStore("1")

	pending, ok := s.Update("1", func(r record) record {
		r.Status = "Approved"
		return r
	})
	require.True(t, ok)

	got, _ := s.Get("1")
	assert.Equal(t, "Approved", got.Status)

	pending.Rollback()
	got, _ = s.Get("1")
	assert.Equal(t, "Pending", got.Status)
}

func TestRollbackAfterCommitIsInert(t *testing.T) {
	s := newTestStore("1", "2")

	pending, _ := s.Remove("1")
	pending.Commit()
	pending.Rollback()

	assert.Equal(t, 1, s.Len())
	_, found := s.Get("1")
	assert.False(t, found)
}

func TestUpdateRollbackAfterRefreshLeavesFreshData(t *testing.T) {
	s := newTestStore("1")

	pending, _ := s.Update("1", func(r record) record {
		r.Status = "Approved"
		return r
	})

	// A refresh replaces the collection while the call is in flight.
	s.Replace([]record{{ID: "9", Status: "Fresh"}})
	pending.Rollback()

	// The stale pre-image is not resurrected.
	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "9", items[0].ID)
}

func TestReplaceCopiesInput(t *testing.T) {
	input := []record{{ID: "1"}}
	s := NewStore(func(r record) string { return r.ID }, input)

	input[0].ID = "mutated"
	got, found := s.Get("1")
	assert.True(t, found)
	assert.Equal(t, "1", got.ID)
}
