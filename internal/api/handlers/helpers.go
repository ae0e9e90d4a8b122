// Package handlers implements the HTTP handlers of the /api routes. Every
// response is a JSON object carrying a boolean "success" field.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hoanghai1803/creatorpilot/internal/ai"
	"github.com/hoanghai1803/creatorpilot/internal/generate"
	"github.com/hoanghai1803/creatorpilot/internal/settings"
	"github.com/hoanghai1803/creatorpilot/internal/storage"
)

// validate checks the tagged request DTOs of the CRUD routes.
var validate = validator.New(validator.WithRequiredStructEnabled())

// writeJSON encodes v as JSON and writes it to the response with the given
// HTTP status code. Content-Type is always set to application/json.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already sent; nothing left to do but log.
		slog.Error("failed to encode response", "error", err)
	}
}

// writeOK writes a 200 response with body and "success": true.
func writeOK(w http.ResponseWriter, body map[string]any) {
	if body == nil {
		body = map[string]any{}
	}
	body["success"] = true
	writeJSON(w, http.StatusOK, body)
}

// writeError writes a JSON error response with the given HTTP status code.
// The response body is {"success": false, "error": "message"}.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "error": message})
}

// writeServiceError maps err to a status code and a message that is safe to
// show. Unclassified errors are logged and answered with fallback.
func writeServiceError(w http.ResponseWriter, err error, fallback string) {
	var (
		invalid  *generate.InvalidArgumentError
		upstream *ai.UpstreamError
		verrs    validator.ValidationErrors
	)

	switch {
	case errors.As(err, &invalid):
		writeError(w, http.StatusBadRequest, invalid.Message)
	case errors.Is(err, settings.ErrInvalidCapability), errors.Is(err, settings.ErrInvalidPatch):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &verrs):
		writeError(w, http.StatusBadRequest, validationMessage(verrs))
	case errors.Is(err, errInvalidBody):
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "记录不存在")
	case errors.Is(err, generate.ErrNoBackend):
		writeError(w, http.StatusServiceUnavailable, "未配置AI服务，请先在设置中配置API Key")
	case errors.As(err, &upstream):
		slog.Error("upstream request failed", "status", upstream.StatusCode, "error", err)
		if upstream.StatusCode != 0 {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("AI请求失败: %d", upstream.StatusCode))
			return
		}
		writeError(w, http.StatusInternalServerError, "AI请求失败")
	default:
		slog.Error(fallback, "error", err)
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

// validationMessage lists the failing fields of a validated DTO.
func validationMessage(verrs validator.ValidationErrors) string {
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}
	return "invalid fields: " + strings.Join(fields, ", ")
}

// errInvalidBody marks a request body that is not the expected JSON.
var errInvalidBody = errors.New("invalid JSON body")

// decodeJSON decodes the request body into v. An empty body leaves v
// untouched.
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	return nil
}

// decodeAndValidate decodes the body into v and runs the struct validator.
func decodeAndValidate(r *http.Request, v any) error {
	if err := decodeJSON(r, v); err != nil {
		return err
	}
	return validate.Struct(v)
}

// queryID returns the "id" query parameter.
func queryID(r *http.Request) (string, error) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		return "", errors.New("missing id")
	}
	return id, nil
}

// filterValue treats "all" as no filter.
func filterValue(v, def string) string {
	if v == "" {
		v = def
	}
	if v == "all" {
		return ""
	}
	return v
}
