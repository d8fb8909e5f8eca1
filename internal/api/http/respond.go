package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/courseforge/courseforge-lms/internal/apperr"
)

var validate = validator.New()

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error  string   `json:"error"`
	Errors []string `json:"errors,omitempty"`
}

// writeErr maps the error taxonomy onto HTTP statuses. Policy violations are
// 409s the caller is expected to branch on, not server faults.
func writeErr(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindPolicyViolation:
		status = http.StatusConflict
	case apperr.KindAccessDenied:
		status = http.StatusForbidden
	}
	body := errorBody{Error: apperr.CodeOf(err), Errors: apperr.FieldsOf(err)}
	writeJSON(w, status, body)
}

// decodeValid decodes the JSON body and runs struct validation, folding
// validator output into the error envelope's errors array.
func decodeValid(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.New(apperr.KindValidation, "bad_json", "request body is not valid JSON")
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s: failed %q", fe.Field(), fe.Tag()))
			}
			return apperr.New(apperr.KindValidation, "validation_failed", "request failed validation").WithFields(fields...)
		}
		return apperr.New(apperr.KindValidation, "validation_failed", err.Error())
	}
	return nil
}
