package payout

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Amounts are stored and served as bare JSON numbers. Each type below
// overrides its decimal fields with json.Number, leaving the package-level
// quoting setting of shopspring/decimal untouched.

func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

func (r PayoutRequest) MarshalJSON() ([]byte, error) {
	type plain PayoutRequest
	return json.Marshal(struct {
		plain
		Hours        json.Number `json:"hours"`
		Earnings     json.Number `json:"earnings"`
		PayoutAmount json.Number `json:"payoutAmount"`
	}{
		plain:        plain(r),
		Hours:        number(r.Hours),
		Earnings:     number(r.Earnings),
		PayoutAmount: number(r.PayoutAmount),
	})
}

func (s Stats) MarshalJSON() ([]byte, error) {
	type plain Stats
	return json.Marshal(struct {
		plain
		ApprovedAmountTotal json.Number `json:"approvedAmountTotal"`
	}{
		plain:               plain(s),
		ApprovedAmountTotal: number(s.ApprovedAmountTotal),
	})
}

func (s HistorySummary) MarshalJSON() ([]byte, error) {
	type plain HistorySummary
	return json.Marshal(struct {
		plain
		ApprovedAmountTotal json.Number `json:"approvedAmountTotal"`
	}{
		plain:               plain(s),
		ApprovedAmountTotal: number(s.ApprovedAmountTotal),
	})
}

func (o Overview) MarshalJSON() ([]byte, error) {
	type plain Overview
	return json.Marshal(struct {
		plain
		HoursRecorded     json.Number `json:"hoursRecorded"`
		TotalEarnings     json.Number `json:"totalEarnings"`
		AvailableToPayout json.Number `json:"availableToPayout"`
		MinimumWithdrawal json.Number `json:"minimumWithdrawal"`
	}{
		plain:             plain(o),
		HoursRecorded:     number(o.HoursRecorded),
		TotalEarnings:     number(o.TotalEarnings),
		AvailableToPayout: number(o.AvailableToPayout),
		MinimumWithdrawal: number(o.MinimumWithdrawal),
	})
}
