package models

import "time"

// Expiration records a deadline window for a request. Rows are append-only
// history; the current window is the most recent row whose ResponseExpiration
// is still null.
type Expiration struct {
	BaseUUIDModel
	RequestID          string     `gorm:"type:varchar(64);not null;index" json:"requestId"`
	RequestExpiration  time.Time  `gorm:"not null"                        json:"requestExpiration"`
	ResponseExpiration *time.Time `json:"responseExpiration,omitempty"`
}

// Undecided reports whether the window still awaits a response deadline.
func (e Expiration) Undecided() bool {
	return e.ResponseExpiration == nil
}
