package payout

import "github.com/shopspring/decimal"

// SubmitPayoutDTO is the user's "Request Payment" form.
type SubmitPayoutDTO struct {
	Name          string          `json:"name" validate:"required,max=120"`
	Hours         decimal.Decimal `json:"hours" validate:"gte=0"`
	Earnings      decimal.Decimal `json:"earnings" validate:"gte=0"`
	PayoutAmount  decimal.Decimal `json:"payoutAmount" validate:"gt=0"`
	PaymentMethod string          `json:"paymentMethod" validate:"required"`
}

// ResolveResponse tells the caller whether the decision moved a request.
// Resolved is false when the id was not pending.
type ResolveResponse struct {
	Resolved bool           `json:"resolved"`
	Request  *PayoutRequest `json:"request,omitempty"`
}

type PendingResponse struct {
	Requests []PayoutRequest `json:"requests"`
}

type HistorySummary struct {
	ApprovedCount       int             `json:"approvedCount"`
	RejectedCount       int             `json:"rejectedCount"`
	ApprovedAmountTotal decimal.Decimal `json:"approvedAmountTotal"`
}

// HistoryView is the history collection newest first with its summary.
type HistoryView struct {
	Requests []PayoutRequest `json:"requests"`
	Summary  HistorySummary  `json:"summary"`
}

// Overview holds the user dashboard cards.
type Overview struct {
	HoursRecorded     decimal.Decimal `json:"hoursRecorded"`
	TotalEarnings     decimal.Decimal `json:"totalEarnings"`
	AvailableToPayout decimal.Decimal `json:"availableToPayout"`
	MinimumWithdrawal decimal.Decimal `json:"minimumWithdrawal"`
}

type PaymentMethodsResponse struct {
	PaymentMethods []string `json:"paymentMethods"`
}
