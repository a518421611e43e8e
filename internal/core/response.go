// AngelaMos | 2026
// response.go

package core

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type paginatedEnvelope struct {
	Results  any `json:"results"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Total    int `json:"total"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	//nolint:errcheck // best-effort response
	_ = json.NewEncoder(w).Encode(data)
}

func OK(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, data)
}

func Created(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusCreated, data)
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func Paginated(w http.ResponseWriter, results any, page, pageSize, total int) {
	writeJSON(w, http.StatusOK, paginatedEnvelope{
		Results:  results,
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	})
}

// JSONError renders an AppError; validation errors render the bare
// field -> messages map so clients get per-field feedback.
func JSONError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		writeJSON(w, http.StatusInternalServerError, errorEnvelope{
			Error: errorBody{
				Code:    "INTERNAL_ERROR",
				Message: "internal server error",
			},
		})
		return
	}

	if appErr.Status == http.StatusBadRequest && appErr.Fields != nil {
		writeJSON(w, appErr.Status, appErr.Fields)
		return
	}

	writeJSON(w, appErr.Status, errorEnvelope{
		Error: errorBody{
			Code:    appErr.Code,
			Message: appErr.Error(),
		},
	})
}

// BadRequest accepts either a plain message or a field -> messages map
// produced by FormatValidationError.
func BadRequest(w http.ResponseWriter, detail any) {
	switch v := detail.(type) {
	case map[string][]string:
		JSONError(w, ValidationError(v))
	case string:
		JSONError(w, FieldError("non_field_errors", v))
	default:
		JSONError(w, FieldError("non_field_errors", "bad request"))
	}
}

func Unauthorized(w http.ResponseWriter, message string) {
	JSONError(w, UnauthorizedError(message))
}

func Forbidden(w http.ResponseWriter, message string) {
	JSONError(w, ForbiddenError(message))
}

func NotFound(w http.ResponseWriter, resource string) {
	JSONError(w, NotFoundError(resource))
}

func InternalServerError(w http.ResponseWriter, err error) {
	slog.Error("request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, errorEnvelope{
		Error: errorBody{
			Code:    "INTERNAL_ERROR",
			Message: "internal server error",
		},
	})
}

// FormatValidationError flattens validator.ValidationErrors into the
// field -> messages shape used by all 400 responses.
func FormatValidationError(err error) map[string][]string {
	fields := make(map[string][]string)

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		fields["non_field_errors"] = []string{"invalid input"}
		return fields
	}

	for _, fieldErr := range validationErrs {
		name := strings.ToLower(fieldErr.Field())
		fields[name] = append(fields[name], validationMessage(fieldErr))
	}

	return fields
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "slug":
		return "must contain only letters, numbers, hyphens and underscores"
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	default:
		return "invalid value"
	}
}
