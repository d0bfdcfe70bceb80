package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/tableside/api/internal/enum"
	"github.com/tableside/api/internal/service"
	"github.com/tableside/api/internal/store"
)

// StateReader is the shared snapshot plus the reloads handlers may request
// after their own writes. Satisfied by *store.Store.
type StateReader interface {
	Snapshot() store.Snapshot
	Reload(ctx context.Context) error
	ReloadMenu(ctx context.Context) error
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("menu_category", func(fl validator.FieldLevel) bool {
		return enum.IsMenuCategory(fl.Field().String())
	})
	return v
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeAndValidate reads a JSON body into dst and runs struct validation.
// On failure it writes the 400 response and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeValidationError(w, err)
		return false
	}
	return true
}

func writeValidationError(w http.ResponseWriter, err error) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	details := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		switch fe.Tag() {
		case "required":
			details = append(details, fmt.Sprintf("%s is required", fe.Field()))
		case "min", "gte", "gt":
			details = append(details, fmt.Sprintf("%s must be >= %s", fe.Field(), fe.Param()))
		case "max", "lte":
			details = append(details, fmt.Sprintf("%s must be <= %s", fe.Field(), fe.Param()))
		case "oneof":
			details = append(details, fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param()))
		default:
			details = append(details, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	writeJSON(w, http.StatusBadRequest, map[string]interface{}{
		"error":   "validation failed",
		"details": details,
	})
}

// writeServiceError maps errors returned by the order service to responses.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	var vErr *service.ValidationError
	var pErr *service.PersistenceError
	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, vErr.Error())
	case errors.Is(err, service.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, "order not found")
	case errors.Is(err, service.ErrPaymentNotAllowed), errors.Is(err, service.ErrTransitionNotAllowed):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &pErr):
		log.Printf("ERROR: %s: %v", op, err)
		writeError(w, http.StatusInternalServerError, "could not save changes, please retry")
	default:
		log.Printf("ERROR: %s: %v", op, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
