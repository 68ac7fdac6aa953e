package loadgen

import (
	"fmt"
	"slices"

	"github.com/samber/lo"

	"github.com/okian/supportxp/internal/domain/model"
)

// Verify compares the top n leaderboard entries with the expected totals and
// returns one message per discrepancy. It assumes the engine held no XP
// before the run.
func Verify(board []model.XPStanding, expected map[string]int, n int) []string {
	var out []string

	want := lo.Values(expected)
	slices.SortFunc(want, func(a, b int) int { return b - a })
	if len(want) > n {
		want = want[:n]
	}
	if len(board) != len(want) {
		out = append(out, fmt.Sprintf("leaderboard has %d entries, want %d", len(board), len(want)))
	}

	for i, e := range board {
		if i > 0 {
			prev := board[i-1]
			if e.TotalXP > prev.TotalXP {
				out = append(out, fmt.Sprintf("entry %d (%s, %d XP) outranks entry %d (%s, %d XP)", i, e.UserID, e.TotalXP, i-1, prev.UserID, prev.TotalXP))
			}
			if e.TotalXP == prev.TotalXP && e.Rank != prev.Rank {
				out = append(out, fmt.Sprintf("tied users %s and %s have ranks %d and %d", prev.UserID, e.UserID, prev.Rank, e.Rank))
			}
		}
		total, ok := expected[e.UserID]
		switch {
		case !ok:
			out = append(out, fmt.Sprintf("unexpected user %s on leaderboard", e.UserID))
		case total != e.TotalXP:
			out = append(out, fmt.Sprintf("user %s has %d XP, want %d", e.UserID, e.TotalXP, total))
		}
		if i < len(want) && e.TotalXP != want[i] {
			out = append(out, fmt.Sprintf("position %d holds %d XP, want %d", i+1, e.TotalXP, want[i]))
		}
	}
	return out
}
