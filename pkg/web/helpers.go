package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// MaxBodyBytes limits the size of JSON request bodies.
const MaxBodyBytes = 1 << 20

// ErrMalformedBody reports a request body that is not valid JSON.
var ErrMalformedBody = errors.New("request body is not valid JSON")

// TypeMismatchError reports a well-formed JSON body with a value that does not fit its field.
type TypeMismatchError struct {
	Field string
	Err   error
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("field %s has an unexpected type: %v", e.Field, e.Err)
}

func (e *TypeMismatchError) Unwrap() error {
	return e.Err
}

// Fields reports the mismatch in the same shape as validation failures.
func (e *TypeMismatchError) Fields() map[string]string {
	return map[string]string{e.Field: "failed on rule: type"}
}

func RespondJSON(w http.ResponseWriter, logger *slog.Logger, status int, payload any) {
	// Handle nil payload
	if payload == nil {
		w.WriteHeader(status)
		return
	}

	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Error encoding response to JSON", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	RespondJSON(w, logger, status, map[string]string{"error": message})
}

// RespondValidationErrors writes a 400 with the per-field rule failures.
func RespondValidationErrors(w http.ResponseWriter, logger *slog.Logger, fields map[string]string) {
	RespondJSON(w, logger, http.StatusBadRequest, map[string]any{"validation_errors": fields})
}

// ReadBody reads the request body up to MaxBodyBytes.
func ReadBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	return body, nil
}

// DecodeBody reads the body and decodes it into dst, returning the raw body.
// An empty body is treated as {}. A body that is not JSON returns ErrMalformedBody;
// valid JSON that does not fit dst returns a *TypeMismatchError.
func DecodeBody(w http.ResponseWriter, r *http.Request, dst any) ([]byte, error) {
	body, err := ReadBody(w, r)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}
	if !json.Valid(body) {
		return body, ErrMalformedBody
	}
	if err := json.Unmarshal(body, dst); err != nil {
		field := "body"
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			field = typeErr.Field
		}
		return body, &TypeMismatchError{Field: field, Err: err}
	}
	return body, nil
}

// DecodeJSON reads and decodes the request body into dst.
// An empty body leaves dst untouched when allowEmpty is set.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) error {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes)).Decode(dst)
	if errors.Is(err, io.EOF) && allowEmpty {
		return nil
	}
	return err
}

// PathValue returns the named path parameter. It responds with 400 and returns false when it is empty.
func PathValue(w http.ResponseWriter, r *http.Request, logger *slog.Logger, name string) (string, bool) {
	value := r.PathValue(name)
	if value == "" {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Missing %s", name))
		return "", false
	}
	return value, true
}
