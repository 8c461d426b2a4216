package util

import "github.com/google/uuid"

// NewRequestID returns an id attached to outgoing API calls so server logs
// can be correlated with client activity.
func NewRequestID() string {
	return uuid.NewString()
}
