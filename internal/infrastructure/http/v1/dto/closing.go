package dto

import "time"

// CreateClosingRequest is the body of POST /entities/:entityID/closing-entries.
type CreateClosingRequest struct {
	ClosingDate string `json:"closingDate" binding:"required"`
	// Post posts the closing entry right after it is materialized.
	Post bool `json:"post"`
}

// Date parses the closing date.
func (r CreateClosingRequest) Date() (time.Time, error) {
	return ParseDate("closingDate", r.ClosingDate)
}
