// Package transport defines the request/response DTOs of the orders module.
package transport

import (
	"time"

	"github.com/google/uuid"
)

// ProcessResult is the outcome of one pipeline invocation. Message is
// human-readable and embeds the new / already-sent counts and the
// notification sent/failed tallies.
type ProcessResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ProcessSheetRequest triggers a synchronous pipeline run.
type ProcessSheetRequest struct {
	SheetName string `json:"sheetName" validate:"required,min=1,max=100"`
}

// EnqueueSheetRequest queues a pipeline run, optionally at a later time.
type EnqueueSheetRequest struct {
	SheetName string     `json:"sheetName" validate:"required,min=1,max=100"`
	RunAt     *time.Time `json:"runAt,omitempty"`
}

// EnqueueResponse confirms a queued pipeline run.
type EnqueueResponse struct {
	TaskID    string     `json:"taskId"`
	SheetName string     `json:"sheetName"`
	RunAt     *time.Time `json:"runAt,omitempty"`
}

// SheetListResponse lists the live sheet tab names.
type SheetListResponse struct {
	Sheets []string `json:"sheets"`
}

// ProcessedSheetResponse is one processed-sheet marker.
type ProcessedSheetResponse struct {
	SheetName   string    `json:"sheetName"`
	ProcessedAt time.Time `json:"processedAt"`
}

// RunResponse is one recorded pipeline run.
type RunResponse struct {
	ID               uuid.UUID `json:"id"`
	SheetName        string    `json:"sheetName"`
	StartedAt        time.Time `json:"startedAt"`
	FinishedAt       time.Time `json:"finishedAt"`
	Success          bool      `json:"success"`
	Message          string    `json:"message"`
	NewCount         int       `json:"newCount"`
	AlreadySentCount int       `json:"alreadySentCount"`
	SkippedCount     int       `json:"skippedCount"`
	SentCount        int       `json:"sentCount"`
	FailedCount      int       `json:"failedCount"`
}
