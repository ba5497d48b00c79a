package payout

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	MethodWise     = "Wise"
	MethodPayPal   = "PayPal"
	MethodBitcoin  = "Bitcoin"
	MethodGiftCard = "Gift Card"
)

// PaymentMethods lists the withdrawal channels a user can pick from.
func PaymentMethods() []string {
	return []string{MethodWise, MethodPayPal, MethodBitcoin, MethodGiftCard}
}

func IsPaymentMethod(m string) bool {
	for _, pm := range PaymentMethods() {
		if pm == m {
			return true
		}
	}
	return false
}

// ErrMalformedCollection marks a persisted collection that could not be decoded.
var ErrMalformedCollection = errors.New("malformed payout collection")

type PayoutRequest struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Hours         decimal.Decimal `json:"hours"`
	Earnings      decimal.Decimal `json:"earnings"`
	PayoutAmount  decimal.Decimal `json:"payoutAmount"`
	PaymentMethod string          `json:"paymentMethod"`
	RequestStatus Status          `json:"requestStatus"`
	Timestamp     *time.Time      `json:"timestamp,omitempty"`
}

// Close returns a copy moved to the terminal status with the decision time set.
func (r PayoutRequest) Close(outcome Status, at time.Time) PayoutRequest {
	closed := r
	closed.RequestStatus = outcome
	ts := at.UTC()
	closed.Timestamp = &ts
	return closed
}

// Equal compares field by field, amounts by value.
func (r PayoutRequest) Equal(o PayoutRequest) bool {
	if r.ID != o.ID || r.Name != o.Name || r.PaymentMethod != o.PaymentMethod || r.RequestStatus != o.RequestStatus {
		return false
	}
	if !r.Hours.Equal(o.Hours) || !r.Earnings.Equal(o.Earnings) || !r.PayoutAmount.Equal(o.PayoutAmount) {
		return false
	}
	if (r.Timestamp == nil) != (o.Timestamp == nil) {
		return false
	}
	return r.Timestamp == nil || r.Timestamp.Equal(*o.Timestamp)
}

// ValidatePending checks that every record is open and carries no timestamp.
func ValidatePending(seq []PayoutRequest) error {
	for _, r := range seq {
		if !r.RequestStatus.IsOpen() {
			return fmt.Errorf("pending request %d has status %q", r.ID, r.RequestStatus)
		}
		if r.Timestamp != nil {
			return fmt.Errorf("pending request %d has a timestamp", r.ID)
		}
	}
	return nil
}

// ValidateHistory checks that every record is decided and timestamped.
func ValidateHistory(seq []PayoutRequest) error {
	for _, r := range seq {
		if !r.RequestStatus.IsTerminal() {
			return fmt.Errorf("history request %d has status %q", r.ID, r.RequestStatus)
		}
		if r.Timestamp == nil {
			return fmt.Errorf("history request %d has no timestamp", r.ID)
		}
	}
	return nil
}

func NextID(collections ...[]PayoutRequest) int64 {
	var highest int64
	for _, seq := range collections {
		for _, r := range seq {
			if r.ID > highest {
				highest = r.ID
			}
		}
	}
	return highest + 1
}
