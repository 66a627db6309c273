package models

// Word is one entry of the external word catalog. The engine never owns or
// validates catalog content; it only intersects catalog ids against per-user
// progress.
type Word struct {
	ID          string `json:"id" db:"id"`
	Label       string `json:"label" db:"label"`
	Translation string `json:"translation" db:"translation"`
	Topic       string `json:"topic" db:"topic"`
}
