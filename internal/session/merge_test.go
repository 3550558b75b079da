package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcallahan/tastemap/internal/domain"
)

func rec(id, name string) domain.Restaurant {
	return domain.Restaurant{ID: id, Name: name}
}

func recPtr(id, name string) *domain.Restaurant {
	r := rec(id, name)
	return &r
}

func ids(records []domain.Restaurant) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestUpsertRecordPrependsNewKey(t *testing.T) {
	records := []domain.Restaurant{rec("1", "A"), rec("2", "B")}

	out := upsertRecord(records, rec("3", "C"))

	assert.Equal(t, []string{"3", "1", "2"}, ids(out))
}

func TestUpsertRecordReplacesInPlace(t *testing.T) {
	records := []domain.Restaurant{rec("1", "A"), rec("2", "B"), rec("3", "C")}

	out := upsertRecord(records, rec("2", "B2"))

	assert.Equal(t, []string{"1", "2", "3"}, ids(out))
	assert.Equal(t, "B2", out[1].Name)
	// Input untouched
	assert.Equal(t, "B", records[1].Name)
}

func TestUpsertRecordNeverDuplicatesKeys(t *testing.T) {
	var records []domain.Restaurant
	for _, id := range []string{"1", "2", "1", "3", "2", "1"} {
		records = upsertRecord(records, rec(id, "name-"+id))
	}

	seen := map[string]bool{}
	for _, r := range records {
		require.False(t, seen[r.ID], "duplicate id %s", r.ID)
		seen[r.ID] = true
	}
	assert.Len(t, records, 3)
}

func TestRemoveRecord(t *testing.T) {
	records := []domain.Restaurant{rec("1", "A"), rec("2", "B")}

	out := removeRecord(records, "1")

	assert.Equal(t, []string{"2"}, ids(out))
}

func TestRemoveRecordAbsentIsNoOp(t *testing.T) {
	records := []domain.Restaurant{rec("1", "A")}

	out := removeRecord(records, "nope")

	assert.Equal(t, records, out)
}

func TestApplyChangeUpdateKeepsPositionAndLength(t *testing.T) {
	records := []domain.Restaurant{rec("1", "A"), rec("2", "B")}

	out := applyChange(records, domain.ChangeEvent{
		Kind: domain.ChangeUpdate, Key: "1", Record: recPtr("1", "A2"),
	})

	require.Len(t, out, 2)
	assert.Equal(t, "1", out[0].ID)
	assert.Equal(t, "A2", out[0].Name)
}

func TestApplyChangeIsIdempotent(t *testing.T) {
	records := []domain.Restaurant{rec("1", "A")}

	events := []domain.ChangeEvent{
		{Kind: domain.ChangeInsert, Key: "2", Record: recPtr("2", "B")},
		{Kind: domain.ChangeUpdate, Key: "1", Record: recPtr("1", "A2")},
		{Kind: domain.ChangeDelete, Key: "2"},
	}

	for _, ev := range events {
		once := applyChange(records, ev)
		twice := applyChange(once, ev)
		assert.Equal(t, once, twice, "event %v not idempotent", ev.Kind)
	}
}

func TestApplyChangeLastWriteWinsRegardlessOfOrder(t *testing.T) {
	insert := domain.ChangeEvent{Kind: domain.ChangeInsert, Key: "1", Record: recPtr("1", "A")}
	update := domain.ChangeEvent{Kind: domain.ChangeUpdate, Key: "1", Record: recPtr("1", "A2")}

	// An update arriving before its insert echo still converges on the
	// last-applied value.
	out := applyChange(nil, update)
	out = applyChange(out, insert)

	require.Len(t, out, 1)
	assert.Equal(t, "A", out[0].Name)

	out = applyChange(out, update)
	assert.Equal(t, "A2", out[0].Name)
}

func TestApplyChangeDeleteThenEchoOfOldInsert(t *testing.T) {
	// A stale re-delivered delete for a key that no longer exists is a no-op.
	out := applyChange(nil, domain.ChangeEvent{Kind: domain.ChangeDelete, Key: "1"})
	assert.Empty(t, out)
}

func TestApplyChangeInsertWithoutRecordIgnored(t *testing.T) {
	records := []domain.Restaurant{rec("1", "A")}

	out := applyChange(records, domain.ChangeEvent{Kind: domain.ChangeInsert, Key: "2"})

	assert.Equal(t, records, out)
}
