package util

import "github.com/google/uuid"

// NewRequestID returns a random id used to correlate client and server logs.
func NewRequestID() string {
	return uuid.NewString()
}
