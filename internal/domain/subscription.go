package domain

// SubscriptionStatus is the e-commerce subscription status string.
type SubscriptionStatus string

const (
	StatusActive           SubscriptionStatus = "active"
	StatusNeedIDCheck      SubscriptionStatus = "need-id-check"
	StatusIDWasChecked     SubscriptionStatus = "id-was-checked"
	StatusPending          SubscriptionStatus = "pending"
	StatusOnHold           SubscriptionStatus = "on-hold"
	StatusPendingCancel    SubscriptionStatus = "pending-cancel"
	StatusCancelled        SubscriptionStatus = "cancelled"
	StatusSuspendedPayment SubscriptionStatus = "suspended-payment"
	StatusSuspendedManual  SubscriptionStatus = "suspended-manual"
)

// IsIdentityCheck reports whether the status means the member is waiting on (or just passed) an ID check.
func (s SubscriptionStatus) IsIdentityCheck() bool {
	return s == StatusNeedIDCheck || s == StatusIDWasChecked
}

// EndsMembership reports whether moving to this status can end a membership.
func (s SubscriptionStatus) EndsMembership() bool {
	switch s {
	case StatusCancelled, StatusSuspendedPayment, StatusSuspendedManual:
		return true
	default:
		return false
	}
}

// CapabilityBoardMember marks a customer as sitting on the board.
const CapabilityBoardMember = "denhac_board_member"

// UserMembershipStatusActive is the status of a granted user membership plan.
const UserMembershipStatusActive = "active"
