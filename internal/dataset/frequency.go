package dataset

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
)

// ErrInvalidStrategy signals an unknown user-selection strategy
var ErrInvalidStrategy = errors.New("invalid selection strategy")

// Selection strategies
const (
	StrategyTop    = "top"
	StrategyRandom = "random"
)

// UserCount is one entry of the per-user comment frequency index
type UserCount struct {
	UID   string
	Count int
}

// CountUserFrequency counts comment rows per uid. The result is sorted by
// descending count; ties keep the order uids first appear in the table.
func CountUserFrequency(t *Table, uidColumn string) ([]UserCount, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: comments table is nil", ErrMissingInput)
	}
	if !t.HasColumn(uidColumn) {
		return nil, fmt.Errorf("%w: table has no %q column", ErrMissingInput, uidColumn)
	}

	counts := make(map[string]int)
	var order []string
	for _, row := range t.Rows {
		uid := t.Field(row, uidColumn)
		if uid == "" {
			continue
		}
		if _, seen := counts[uid]; !seen {
			order = append(order, uid)
		}
		counts[uid]++
	}

	freq := make([]UserCount, 0, len(order))
	for _, uid := range order {
		freq = append(freq, UserCount{UID: uid, Count: counts[uid]})
	}
	sort.SliceStable(freq, func(i, j int) bool {
		return freq[i].Count > freq[j].Count
	})
	return freq, nil
}

// SelectUsers picks n uids from the comments table. StrategyTop returns
// the n most frequent commenters in descending frequency order;
// StrategyRandom draws a uniform, unweighted sample of n distinct uids
// using the given seed, so repeated runs on the same input are
// reproducible. Fewer than n distinct uids returns them all.
func SelectUsers(t *Table, n int, strategy string, seed int64, uidColumn string) ([]string, error) {
	freq, err := CountUserFrequency(t, uidColumn)
	if err != nil {
		return nil, err
	}

	switch strategy {
	case StrategyTop:
		if n > len(freq) {
			n = len(freq)
		}
		uids := make([]string, 0, n)
		for _, f := range freq[:n] {
			uids = append(uids, f.UID)
		}
		return uids, nil
	case StrategyRandom:
		if n > len(freq) {
			n = len(freq)
		}
		r := rand.New(rand.NewSource(seed))
		uids := make([]string, 0, n)
		for _, i := range r.Perm(len(freq))[:n] {
			uids = append(uids, freq[i].UID)
		}
		return uids, nil
	default:
		return nil, fmt.Errorf("%w: %q (want %q or %q)", ErrInvalidStrategy, strategy, StrategyTop, StrategyRandom)
	}
}

// FilterUsers returns a new table holding only the rows whose uid is in
// the given set, preserving row order.
func FilterUsers(t *Table, uids []string, uidColumn string) (*Table, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: comments table is nil", ErrMissingInput)
	}
	if !t.HasColumn(uidColumn) {
		return nil, fmt.Errorf("%w: table has no %q column", ErrMissingInput, uidColumn)
	}

	keep := make(map[string]bool, len(uids))
	for _, uid := range uids {
		keep[uid] = true
	}

	var rows [][]string
	for _, row := range t.Rows {
		if keep[t.Field(row, uidColumn)] {
			rows = append(rows, row)
		}
	}
	return New(t.Columns, rows), nil
}
