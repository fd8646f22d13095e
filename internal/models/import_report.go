package models

import (
	"time"
)

const (
	ImportStatusCompleted = "completed"
	ImportStatusPartial   = "partial"
	ImportStatusFailed    = "failed"
)

// RowError explains why one CSV row did not become an invoice. Row is the
// 1-based file line the record starts on.
type RowError struct {
	Row     int          `json:"row"`
	Message string       `json:"message"`
	Fields  []FieldIssue `json:"fields,omitempty"`
}

type FieldIssue struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ImportReport summarizes one bulk invoice upload.
type ImportReport struct {
	Filename    string     `json:"filename"`
	TotalRows   int        `json:"total_rows"`
	Created     int        `json:"created"`
	Rejected    int        `json:"rejected"`
	Failed      int        `json:"failed"`
	Status      string     `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt time.Time  `json:"completed_at"`
	Errors      []RowError `json:"errors"`
}
