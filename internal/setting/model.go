package setting

import "time"

// Setting is the single back-office configuration row (id 1). It holds
// the payment details the bot shows before a voucher upload and the
// admin chat that receives payment notices.
type Setting struct {
	ID              int64     `db:"id" json:"id"`
	ContactName     string    `db:"contact_name" json:"contact_name"`
	TelegramUser    string    `db:"telegram_user" json:"telegram_user"`
	BankDetails     string    `db:"bank_details" json:"bank_details"`
	AdminTelegramID int64     `db:"admin_telegram_id" json:"admin_telegram_id"`
	QR              *string   `db:"qr" json:"qr,omitempty"`
	QRURL           *string   `db:"-" json:"qr_url,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// Params is the admin update payload. The QR image travels separately
// as a multipart file.
type Params struct {
	ContactName     string `form:"contact_name" json:"contact_name" binding:"required"`
	TelegramUser    string `form:"telegram_user" json:"telegram_user" binding:"required"`
	BankDetails     string `form:"bank_details" json:"bank_details" binding:"required"`
	AdminTelegramID int64  `form:"admin_telegram_id" json:"admin_telegram_id" binding:"required"`
}
