package library

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHistoryMonotonicity(t *testing.T) {
	h := NewHistory(0)
	h.Append("a")
	h.Append("b")
	h.Append("c")

	// walk back to the head, then forward again: the same entries come back
	// in the same order
	require.True(t, h.Retreat())
	require.Equal(t, "b", h.Current())
	require.True(t, h.Retreat())
	require.Equal(t, "a", h.Current())
	require.False(t, h.Retreat())

	require.True(t, h.Advance())
	require.Equal(t, "b", h.Current())
	require.True(t, h.Advance())
	require.Equal(t, "c", h.Current())
	require.False(t, h.Advance())
}

func TestHistoryForwardBranchTruncation(t *testing.T) {
	h := NewHistory(0)
	for _, p := range []string{"a", "b", "c", "d", "e"} {
		h.Append(p)
	}

	// move back two steps, then branch off with a fresh pick
	h.Retreat()
	h.Retreat()
	cursor := h.Cursor()
	h.TruncateForward()
	h.Append("f")

	require.Equal(t, cursor+2, h.Len())
	require.Equal(t, "f", h.Current())
	require.Equal(t, []string{"a", "b", "c", "f"}, h.Entries())
}

func TestHistoryAppendDeduplicates(t *testing.T) {
	h := NewHistory(0)
	h.Append("a")
	h.Append("b")
	h.Append("a")

	require.Equal(t, []string{"b", "a"}, h.Entries())
	require.Equal(t, "a", h.Current())
}

func TestHistoryRemoveAdjustsCursor(t *testing.T) {
	h := NewHistory(0)
	for _, p := range []string{"a", "b", "c"} {
		h.Append(p)
	}
	h.Retreat() // cursor on b

	h.Remove("a")
	require.Equal(t, "b", h.Current())
	require.Equal(t, 0, h.Cursor())

	h.Remove("c")
	require.Equal(t, "b", h.Current())
	require.True(t, h.AtTail())
}

func TestHistoryPeeks(t *testing.T) {
	h := NewHistory(0)

	_, ok := h.PeekNext()
	require.False(t, ok)
	_, ok = h.PeekPrev()
	require.False(t, ok)

	h.Append("a")
	h.Append("b")
	h.Retreat()

	next, ok := h.PeekNext()
	require.True(t, ok)
	require.Equal(t, "b", next)

	_, ok = h.PeekPrev()
	require.False(t, ok)
}

func TestHistoryRecentContains(t *testing.T) {
	h := NewHistory(0)
	for _, p := range []string{"a", "b", "c", "d"} {
		h.Append(p)
	}

	require.True(t, h.RecentContains("D", 0))
	require.True(t, h.RecentContains("c", 1))
	require.False(t, h.RecentContains("a", 1))
}

func TestHistoryLimitTrimsHead(t *testing.T) {
	h := NewHistory(3)
	for _, p := range []string{"a", "b", "c", "d", "e"} {
		h.Append(p)
	}

	require.Equal(t, 3, h.Len())
	require.Equal(t, []string{"c", "d", "e"}, h.Entries())
	require.Equal(t, "e", h.Current())
}

func TestHistoryCloneIsIndependent(t *testing.T) {
	h := NewHistory(0)
	h.Append("a")
	h.Append("b")

	c := h.Clone()
	h.Append("c")

	require.Equal(t, 2, c.Len())
	require.Equal(t, "b", c.Current())
}
