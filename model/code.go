package model

import "time"

// DynamicCode is a short stable identifier whose destination can change
// after the QR image is printed. The edit token is the only proof of
// ownership; there are no accounts.
type DynamicCode struct {
	ID        string    `json:"id"`
	TargetURL string    `json:"target_url"`
	EditToken string    `json:"edit_token,omitempty"`
	IsBlocked bool      `json:"is_blocked"`
	ScanCount int64     `json:"scan_count"`
	CreatedAt time.Time `json:"created_at"`
}

// Public returns a copy safe to hand to callers who only presented the id.
func (c DynamicCode) Public() DynamicCode {
	c.EditToken = ""
	return c
}

// Scan is one resolution of a dynamic code. Rows are append-only.
type Scan struct {
	ID         string    `json:"id"`
	CodeID     string    `json:"code_id"`
	DeviceType string    `json:"device_type"`
	Browser    string    `json:"browser"`
	Country    string    `json:"country"`
	Timestamp  time.Time `json:"timestamp"`
}
