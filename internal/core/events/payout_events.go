package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EventTypePayoutSubmitted = "payout.submitted"
	EventTypePayoutApproved  = "payout.approved"
	EventTypePayoutRejected  = "payout.rejected"
)

// PayoutEvent describes a change in one payout request's lifecycle.
type PayoutEvent struct {
	BaseEvent
	PayoutID      int64           `json:"payout_id"`
	Name          string          `json:"name"`
	PaymentMethod string          `json:"payment_method"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
}

func newPayoutEvent(eventType string, payoutID int64, name, method string, amount decimal.Decimal, status string, at time.Time) *PayoutEvent {
	return &PayoutEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: at,
			Data: map[string]interface{}{
				"payout_id":      payoutID,
				"name":           name,
				"payment_method": method,
				"amount":         amount.String(),
				"status":         status,
			},
		},
		PayoutID:      payoutID,
		Name:          name,
		PaymentMethod: method,
		Amount:        amount,
		Status:        status,
	}
}

func NewPayoutSubmittedEvent(payoutID int64, name, method string, amount decimal.Decimal, at time.Time) *PayoutEvent {
	return newPayoutEvent(EventTypePayoutSubmitted, payoutID, name, method, amount, "Pending", at)
}

// NewPayoutResolvedEvent builds payout.approved or payout.rejected from the final status.
func NewPayoutResolvedEvent(payoutID int64, name, method string, amount decimal.Decimal, status string, at time.Time) *PayoutEvent {
	eventType := EventTypePayoutRejected
	if status == "Approved" {
		eventType = EventTypePayoutApproved
	}
	return newPayoutEvent(eventType, payoutID, name, method, amount, status, at)
}
