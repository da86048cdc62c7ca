package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"budgeteer/internal/auth"
	"budgeteer/internal/core"
	applog "budgeteer/internal/log"
	"budgeteer/internal/services"
	"budgeteer/internal/storage"
)

// response is the envelope every endpoint returns.
type response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func respond(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response{Success: true, Data: data})
}

func fail(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response{Success: false, Message: message})
}

// failErr maps domain errors onto HTTP statuses. Anything unrecognized is a
// storage or programming fault and comes back as a 500 with a generic body.
func failErr(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			applog.FieldError, err.Error(), applog.FieldPath, r.URL.Path)
		fail(w, status, "internal error")
		return
	}
	fail(w, status, err.Error())
}

func statusFor(err error) int {
	var locked *auth.LockedError
	var invalidCreds *auth.InvalidCredentialsError

	switch {
	case errors.As(err, &locked), errors.Is(err, auth.ErrTooManyAttempts):
		return http.StatusLocked
	case errors.As(err, &invalidCreds),
		errors.Is(err, auth.ErrPasswordMismatch),
		errors.Is(err, services.ErrInvalidSession):
		return http.StatusUnauthorized
	case errors.Is(err, storage.ErrNotFound),
		errors.Is(err, services.ErrCategoryNotFound),
		errors.Is(err, core.ErrParentNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrIdentityTaken),
		errors.Is(err, services.ErrDuplicateName),
		errors.Is(err, services.ErrDuplicateKeyword),
		errors.Is(err, services.ErrCategoryInUse),
		errors.Is(err, services.ErrSharedReadOnly),
		errors.Is(err, core.ErrOverlappingBudget):
		return http.StatusConflict
	case errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrNonPositiveAmount),
		errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrInvalidKind),
		errors.Is(err, core.ErrInvalidPeriod),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrNumericName),
		errors.Is(err, core.ErrWeakPassword),
		errors.Is(err, core.ErrInvalidEmail),
		errors.Is(err, core.ErrOwnParent),
		errors.Is(err, core.ErrCyclicHierarchy),
		errors.Is(err, core.ErrCrossOwnerParent),
		errors.Is(err, services.ErrTypeMismatch),
		errors.Is(err, auth.ErrSamePassword),
		errors.Is(err, auth.ErrPasswordReused),
		errors.Is(err, auth.ErrConfirmMismatch):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func decode(r *http.Request, into any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(into)
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}
