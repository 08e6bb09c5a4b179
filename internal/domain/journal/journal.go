package journal

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("journal entry not found")

// Entry is one dated journal record written by a student. Feedback fields
// are filled in later by a teacher.
type Entry struct {
	ID        string `json:"id"`
	StudentID string `json:"studentId"`
	// Date is the journal day in YYYY-MM-DD form. Display order is date
	// descending, so lexicographic order on this field is enough.
	Date     string `json:"date"`
	Category string `json:"category"`
	Content  string `json:"content"`

	Feedback   string `json:"feedback,omitempty"`
	FeedbackBy string `json:"feedbackBy,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateEntryRequest struct {
	StudentID string `json:"studentId" binding:"required"`
	Date      string `json:"date" binding:"required,datetime=2006-01-02"`
	Category  string `json:"category" binding:"required,max=80"`
	Content   string `json:"content" binding:"required,max=4000"`
}

// UpdateEntryRequest is a full-record update; ID presence is checked by the
// handler. FeedbackBy is stamped server-side from the caller identity when
// one is attached, never taken from the body.
type UpdateEntryRequest struct {
	ID        string `json:"id"`
	StudentID string `json:"studentId" binding:"required"`
	Date      string `json:"date" binding:"required,datetime=2006-01-02"`
	Category  string `json:"category" binding:"required,max=80"`
	Content   string `json:"content" binding:"required,max=4000"`
	Feedback  string `json:"feedback" binding:"omitempty,max=4000"`
}
