package domain

import (
	"time"

	"github.com/google/uuid"
)

// StatusCheck liveness record written by clients through the status endpoint.
type StatusCheck struct {
	ID         string    `json:"id" bson:"id"`
	ClientName string    `json:"client_name" bson:"client_name"`
	Timestamp  time.Time `json:"timestamp" bson:"timestamp"`
}

// NewStatusCheck creates a status check stamped with the current UTC time.
func NewStatusCheck(clientName string) StatusCheck {
	return StatusCheck{
		ID:         uuid.New().String(),
		ClientName: clientName,
		Timestamp:  time.Now().UTC(),
	}
}
