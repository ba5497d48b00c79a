package payout

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Siddharth-Keer/Koe-Dashboard/internal"
)

// Status is the lifecycle state of a payout request. The string values are
// the persisted representation.
type Status string

const (
	StatusPending     Status = "Pending"
	StatusUnderReview Status = "Under Review"
	StatusApproved    Status = "Approved"
	StatusRejected    Status = "Rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusUnderReview, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// IsOpen reports whether a request in this state still awaits a decision.
func (s Status) IsOpen() bool {
	return s == StatusPending || s == StatusUnderReview
}

// IsTerminal reports whether no transition leaves this state.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

func (s *Status) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	st := Status(raw)
	if !st.Valid() {
		return fmt.Errorf("unknown request status %q", raw)
	}
	*s = st
	return nil
}

// ParseOutcome accepts the verbs and status names an admin may use for a
// decision, case-insensitively.
func ParseOutcome(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "approve", "approved":
		return StatusApproved, nil
	case "reject", "rejected":
		return StatusRejected, nil
	}
	return "", internal.ErrInvalidOutcome
}
