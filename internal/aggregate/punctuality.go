package aggregate

import (
	"math"
	"sort"

	"github.com/Xantonozar/billkhata-go/types"
)

// Punctuality coloring thresholds. Presentation constants, kept here as
// documented business rules: >=90 green, 70-89 yellow, below 70 red.
const (
	PunctualityGreenThreshold  = 90
	PunctualityYellowThreshold = 70
)

// PunctualityLeaderboard computes, for each member, the percentage of their
// bill shares paid within the window. A member with no shares in the window
// defaults to 100 percent: no bills means fully punctual, not penalized.
// Bills passed in must already be restricted to dueDate within the window.
// The result is sorted descending by percent, ties broken by name so output
// is stable.
func PunctualityLeaderboard(bills []types.Bill, members []types.Member) []types.PunctualityEntry {
	entries := make([]types.PunctualityEntry, 0, len(members))
	for _, member := range members {
		total, paid := 0, 0
		for _, bill := range bills {
			share, ok := bill.ShareFor(member.ID)
			if !ok {
				continue
			}
			total++
			if share.Status == types.SharePaid {
				paid++
			}
		}

		percent := 100
		if total > 0 {
			percent = int(math.Round(100 * float64(paid) / float64(total)))
		}

		entries = append(entries, types.PunctualityEntry{
			MemberID:    member.ID,
			Name:        member.Name,
			TotalShares: total,
			PaidShares:  paid,
			Percent:     percent,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Percent != entries[j].Percent {
			return entries[i].Percent > entries[j].Percent
		}
		return entries[i].Name < entries[j].Name
	})
	return entries
}
