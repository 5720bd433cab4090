package subscription

import "time"

type Status string

const (
	StatusPendingPayment Status = "pending_payment"
	StatusActive         Status = "active"
	StatusCancelled      Status = "cancelled"
)

// approvalWindowDays is the fixed subscription duration. Approval always
// recomputes the full window from "now"; it never extends an existing
// one.
const approvalWindowDays = 30

type Subscription struct {
	ID           int64      `db:"id" json:"id"`
	ClientID     int64      `db:"client_id" json:"client_id"`
	MembershipID int64      `db:"membership_id" json:"membership_id"`
	Status       Status     `db:"status" json:"status"`
	StartDate    *time.Time `db:"start_date" json:"start_date"`
	EndDate      *time.Time `db:"end_date" json:"end_date"`
	Voucher      *string    `db:"voucher" json:"voucher,omitempty"`
	VoucherURL   *string    `db:"-" json:"voucher_url,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt    *time.Time `db:"deleted_at" json:"-"`
}

// IsCurrent reports whether this subscription counts as the client's
// one current subscription.
func (s *Subscription) IsCurrent() bool {
	return s.Status == StatusPendingPayment || s.Status == StatusActive
}

// AdminRow is the flattened shape of the admin subscription listing.
type AdminRow struct {
	ID             int64      `db:"id" json:"id"`
	ClientName     string     `db:"client_name" json:"name"`
	MembershipName string     `db:"membership_name" json:"membership"`
	StartDate      *time.Time `db:"start_date" json:"start_date"`
	EndDate        *time.Time `db:"end_date" json:"end_date"`
	Status         Status     `db:"status" json:"state"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}
