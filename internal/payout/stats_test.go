package payout_test

import (
	"encoding/json"
	"time"

	"github.com/Siddharth-Keer/Koe-Dashboard/internal"
	"github.com/Siddharth-Keer/Koe-Dashboard/internal/payout"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

var _ = Describe("ComputeStats", func() {
	closed := func(id int64, amount int64, status payout.Status, at time.Time) payout.PayoutRequest {
		return request(id, amount).Close(status, at)
	}

	It("should count an empty dashboard as zero", func() {
		stats := payout.ComputeStats(nil, nil)
		Expect(stats.TotalUsers).To(BeZero())
		Expect(stats.PendingCount).To(BeZero())
		Expect(stats.ApprovedCount).To(BeZero())
		Expect(stats.RejectedCount).To(BeZero())
		Expect(stats.ApprovedAmountTotal.IsZero()).To(BeTrue())
	})

	It("should count both collections and sum approved amounts only", func() {
		pending := []payout.PayoutRequest{request(7, 600)}
		history := []payout.PayoutRequest{
			closed(1, 1200, payout.StatusApproved, fixedNow),
			closed(2, 2000, payout.StatusRejected, fixedNow),
			closed(4, 1500, payout.StatusApproved, fixedNow),
		}

		stats := payout.ComputeStats(pending, history)
		Expect(stats.TotalUsers).To(Equal(4))
		Expect(stats.PendingCount).To(Equal(1))
		Expect(stats.ApprovedCount).To(Equal(2))
		Expect(stats.RejectedCount).To(Equal(1))
		Expect(stats.ApprovedAmountTotal.Equal(decimal.NewFromInt(2700))).To(BeTrue())
	})

	It("should keep cents exact", func() {
		a := request(1, 0)
		a.PayoutAmount = decimal.RequireFromString("0.10")
		b := request(2, 0)
		b.PayoutAmount = decimal.RequireFromString("0.20")

		stats := payout.ComputeStats(nil, []payout.PayoutRequest{
			a.Close(payout.StatusApproved, fixedNow),
			b.Close(payout.StatusApproved, fixedNow),
		})
		Expect(stats.ApprovedAmountTotal.String()).To(Equal("0.3"))
	})
})

var _ = Describe("SortNewestFirst", func() {
	It("should order by decision time and leave the input alone", func() {
		older := request(1, 500).Close(payout.StatusApproved, fixedNow.Add(-time.Hour))
		newer := request(2, 500).Close(payout.StatusRejected, fixedNow)
		undated := request(3, 500)
		undated.RequestStatus = payout.StatusApproved

		in := []payout.PayoutRequest{older, undated, newer}
		out := payout.SortNewestFirst(in)

		Expect(ids(out)).To(Equal([]int64{2, 1, 3}))
		Expect(ids(in)).To(Equal([]int64{1, 3, 2}))
	})
})

var _ = Describe("NextID", func() {
	It("should continue after the highest id in any collection", func() {
		Expect(payout.NextID(nil, nil)).To(Equal(int64(1)))
		Expect(payout.NextID(payout.DefaultSeed())).To(Equal(int64(5)))
		Expect(payout.NextID([]payout.PayoutRequest{request(2, 1)}, []payout.PayoutRequest{request(9, 1)})).To(Equal(int64(10)))
	})
})

var _ = Describe("Status", func() {
	It("should round-trip the stored names", func() {
		for _, s := range []payout.Status{payout.StatusPending, payout.StatusUnderReview, payout.StatusApproved, payout.StatusRejected} {
			raw, err := json.Marshal(s)
			Expect(err).NotTo(HaveOccurred())

			var back payout.Status
			Expect(json.Unmarshal(raw, &back)).To(Succeed())
			Expect(back).To(Equal(s))
		}
	})

	It("should refuse unknown names", func() {
		var s payout.Status
		Expect(json.Unmarshal([]byte(`"Paid"`), &s)).To(MatchError(ContainSubstring(`unknown request status "Paid"`)))
	})

	DescribeTable("ParseOutcome",
		func(input string, expected payout.Status) {
			Expect(payout.ParseOutcome(input)).To(Equal(expected))
		},
		Entry("verb", "approve", payout.StatusApproved),
		Entry("status name", "Rejected", payout.StatusRejected),
		Entry("padded upper case", "  REJECT ", payout.StatusRejected),
	)

	It("should not parse non-decisions", func() {
		_, err := payout.ParseOutcome("Under Review")
		Expect(err).To(MatchError(internal.ErrInvalidOutcome))
	})

	It("should serialise a closed request with a UTC RFC 3339 timestamp", func() {
		local := time.Date(2025, 3, 14, 11, 30, 0, 0, time.FixedZone("CET", 3600))
		raw, err := json.Marshal(request(1, 1200).Close(payout.StatusApproved, local))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(raw)).To(ContainSubstring(`"timestamp":"2025-03-14T10:30:00Z"`))
		Expect(string(raw)).To(ContainSubstring(`"payoutAmount":1200`))
	})

	It("should write amounts as numbers without touching decimal's global setting", func() {
		Expect(decimal.MarshalJSONWithoutQuotes).To(BeFalse())

		stats := payout.ComputeStats(nil, []payout.PayoutRequest{request(1, 1200).Close(payout.StatusApproved, fixedNow)})
		raw, err := json.Marshal(stats)
		Expect(err).NotTo(HaveOccurred())
		Expect(raw).To(MatchJSON(`{"totalUsers":1,"pendingCount":0,"approvedCount":1,"rejectedCount":0,"approvedAmountTotal":1200}`))

		raw, err = json.Marshal(payout.DefaultPolicy().Overview)
		Expect(err).NotTo(HaveOccurred())
		Expect(raw).To(MatchJSON(`{"hoursRecorded":12.5,"totalEarnings":3250,"availableToPayout":1200,"minimumWithdrawal":500}`))

		raw, err = json.Marshal(decimal.NewFromInt(7))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(raw)).To(Equal(`"7"`))
	})
})
