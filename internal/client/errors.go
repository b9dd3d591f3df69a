package client

import (
	"errors"
	"fmt"

	"clinic-scheduling/pkg/response"
)

var (
	ErrUnauthorized = errors.New("session expired, sign in again")
	ErrEmptyData    = errors.New("response has no data")
)

// RejectReason classifies a refused booking.
type RejectReason string

const (
	ReasonSlotTaken         RejectReason = "SlotTaken"
	ReasonDoctorUnavailable RejectReason = "DoctorUnavailable"
	ReasonValidationFailed  RejectReason = "ValidationFailed"
	ReasonUnknown           RejectReason = "Unknown"
)

// ReasonFromCode maps an error.code from the API envelope.
func ReasonFromCode(code string) RejectReason {
	switch code {
	case response.CodeSlotTaken:
		return ReasonSlotTaken
	case response.CodeDoctorUnavailable:
		return ReasonDoctorUnavailable
	case response.CodeValidationFailed:
		return ReasonValidationFailed
	}
	return ReasonUnknown
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Code    string
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

func (e *APIError) Reason() RejectReason {
	return ReasonFromCode(e.Code)
}
