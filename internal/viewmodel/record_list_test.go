package viewmodel

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestRecordList_Merge(t *testing.T) {
	l := NewRecordList[account]()

	assert.True(t, l.Merge([]account{{ID: "1"}, {ID: "2"}, {ID: "1", Name: "dup"}}))
	assert.Equal(t, 2, l.Len())

	got, ok := l.Get("1")
	assert.True(t, ok)
	assert.Empty(t, got.Name, "first occurrence wins")

	assert.False(t, l.Merge([]account{{ID: "2"}}), "only duplicates appends nothing")
	assert.False(t, l.Merge(nil))

	assert.True(t, l.Merge([]account{{ID: "2"}, {ID: "3"}}))
	assert.Equal(t, []string{"1", "2", "3"}, keys(l.Items()))
	assert.True(t, l.Contains("3"))
	assert.False(t, l.Contains("4"))

	_, ok = l.Get("4")
	assert.False(t, ok)
}

func TestRecordList_ResetAndItemsCopy(t *testing.T) {
	l := NewRecordList[account]()
	l.Merge(makeAccounts(0, 3))

	items := l.Items()
	items[0].Name = "changed"
	first, _ := l.Get("0")
	assert.Equal(t, "user0", first.Name)

	l.Reset()
	assert.Equal(t, 0, l.Len())
	assert.False(t, l.Contains("0"))
	assert.True(t, l.Merge(makeAccounts(0, 1)), "keys are forgotten after reset")
}

func TestRecordList_UniqueKeysProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		l := NewRecordList[account]()
		seenOrder := []string{}
		seen := map[string]bool{}

		batches := rapid.SliceOfN(rapid.SliceOf(rapid.IntRange(0, 30)), 0, 10).Draw(t, "batches")
		for _, batch := range batches {
			items := make([]account, 0, len(batch))
			wantAppend := false
			for _, n := range batch {
				id := fmt.Sprintf("%d", n)
				items = append(items, account{ID: id})
				if !seen[id] {
					seen[id] = true
					seenOrder = append(seenOrder, id)
					wantAppend = true
				}
			}
			if got := l.Merge(items); got != wantAppend {
				t.Fatalf("Merge reported %v, want %v", got, wantAppend)
			}
		}

		got := keys(l.Items())
		if len(got) != len(seenOrder) {
			t.Fatalf("len %d, want %d", len(got), len(seenOrder))
		}
		for i := range got {
			if got[i] != seenOrder[i] {
				t.Fatalf("order mismatch at %d: %s != %s", i, got[i], seenOrder[i])
			}
		}
	})
}

func keys[T Keyed](items []T) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Key())
	}
	return out
}
