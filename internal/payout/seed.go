package payout

import "github.com/shopspring/decimal"

// DefaultSeed is the pending list written on first start.
func DefaultSeed() []PayoutRequest {
	return []PayoutRequest{
		{
			ID:            1,
			Name:          "John Doe",
			Hours:         decimal.RequireFromString("12.5"),
			Earnings:      decimal.NewFromInt(3250),
			PayoutAmount:  decimal.NewFromInt(1200),
			PaymentMethod: MethodWise,
			RequestStatus: StatusPending,
		},
		{
			ID:            2,
			Name:          "Jane Smith",
			Hours:         decimal.RequireFromString("18.0"),
			Earnings:      decimal.NewFromInt(4500),
			PayoutAmount:  decimal.NewFromInt(2000),
			PaymentMethod: MethodPayPal,
			RequestStatus: StatusPending,
		},
		{
			ID:            4,
			Name:          "Sarah Williams",
			Hours:         decimal.RequireFromString("15.0"),
			Earnings:      decimal.NewFromInt(3750),
			PayoutAmount:  decimal.NewFromInt(1500),
			PaymentMethod: MethodGiftCard,
			RequestStatus: StatusPending,
		},
	}
}
