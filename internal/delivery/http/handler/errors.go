package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"clinic-scheduling/internal/domain/entity"
	"clinic-scheduling/internal/scheduling"
	"clinic-scheduling/internal/usecase"
	"clinic-scheduling/pkg/response"
	"clinic-scheduling/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// decodeAndValidate reads a JSON body into req and runs the struct tags.
// It writes the failure response itself and reports whether to continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v *validator.CustomValidator, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return false
	}
	if err := v.Validate(req); err != nil {
		response.ValidationError(w, v.FormatValidationErrors(err))
		return false
	}
	return true
}

// scheduleValidationFields renders a schedule rule violation the same way
// as a struct tag failure so clients need one code path.
func scheduleValidationFields(err *scheduling.ValidationError) map[string]string {
	fields := map[string]string{
		"kind":    string(err.Kind),
		"message": err.Error(),
	}
	if err.Kind != scheduling.IncompleteWeek {
		fields["day"] = err.Day.String()
	}
	if err.Session != "" {
		fields["session"] = string(err.Session)
	}
	return fields
}

// writeCommonError maps errors shared by several usecases. It reports false
// when err is not one of them so the caller can fall through.
func writeCommonError(w http.ResponseWriter, err error) bool {
	var verr *scheduling.ValidationError
	switch {
	case errors.As(err, &verr):
		response.ValidationError(w, scheduleValidationFields(verr))
	case errors.Is(err, usecase.ErrUnauthenticated):
		response.Unauthorized(w, "Authentication required")
	case errors.Is(err, usecase.ErrDoctorNotFound):
		response.NotFound(w, "Doctor not found")
	case errors.Is(err, usecase.ErrInvalidDateFormat),
		errors.Is(err, usecase.ErrInvalidTimeFormat),
		errors.Is(err, usecase.ErrInvalidDateRange),
		errors.Is(err, usecase.ErrDateRangeTooLarge),
		errors.Is(err, entity.ErrInvalidTimeOfDay):
		response.BadRequest(w, err.Error())
	default:
		return false
	}
	return true
}

// pathUUID parses a UUID route variable, writing 400 when it is malformed.
func pathUUID(w http.ResponseWriter, r *http.Request, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid "+label+" ID", nil)
		return uuid.Nil, false
	}
	return id, true
}

// pathInt64 parses a numeric route variable, writing 400 when it is malformed.
func pathInt64(w http.ResponseWriter, r *http.Request, name, label string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		response.Error(w, http.StatusBadRequest, "Invalid "+label+" ID", nil)
		return 0, false
	}
	return id, true
}
