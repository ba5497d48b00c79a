package payout

import (
	"sort"

	"github.com/shopspring/decimal"
)

type Stats struct {
	TotalUsers          int             `json:"totalUsers"`
	PendingCount        int             `json:"pendingCount"`
	ApprovedCount       int             `json:"approvedCount"`
	RejectedCount       int             `json:"rejectedCount"`
	ApprovedAmountTotal decimal.Decimal `json:"approvedAmountTotal"`
}

// ComputeStats derives the admin dashboard figures from both collections.
func ComputeStats(pending, history []PayoutRequest) Stats {
	summary := Summarize(history)
	return Stats{
		TotalUsers:          len(pending) + len(history),
		PendingCount:        len(pending),
		ApprovedCount:       summary.ApprovedCount,
		RejectedCount:       summary.RejectedCount,
		ApprovedAmountTotal: summary.ApprovedAmountTotal,
	}
}

func Summarize(history []PayoutRequest) HistorySummary {
	summary := HistorySummary{ApprovedAmountTotal: decimal.Zero}
	for _, r := range history {
		switch r.RequestStatus {
		case StatusApproved:
			summary.ApprovedCount++
			summary.ApprovedAmountTotal = summary.ApprovedAmountTotal.Add(r.PayoutAmount)
		case StatusRejected:
			summary.RejectedCount++
		}
	}
	return summary
}

// SortNewestFirst returns a copy ordered by timestamp descending; records
// without a timestamp go last, ties keep their stored order.
func SortNewestFirst(seq []PayoutRequest) []PayoutRequest {
	out := make([]PayoutRequest, len(seq))
	copy(out, seq)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Timestamp, out[j].Timestamp
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
	return out
}
