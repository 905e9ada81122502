package store

import "time"

// Import records one load of a dataset into the store.
type Import struct {
	ID        int64
	Source    string // path of the imported file
	Rows      int
	CreatedAt time.Time
}

// GroupCounts are the raw counts of one group as stored.
type GroupCounts struct {
	Group       string
	N           int
	Conversions int
}
