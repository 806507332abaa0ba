package domain

import "time"

// RollRecord is the persisted summary of one dice session.
type RollRecord struct {
	ID        string    `json:"id"`
	Notation  string    `json:"notation"`
	Canonical string    `json:"canonical"`
	Totals    []int     `json:"totals"`
	Sum       int       `json:"sum"`
	CreatedAt time.Time `json:"created_at"`
}
