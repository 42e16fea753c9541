package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/xfery/dropship-backend/pkg/errors"
)

func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be numeric").WithDetails(map[string]any{"field": key})
	}
	if value < min || value > max {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter out of range").WithDetails(map[string]any{"field": key, "min": min, "max": max})
	}
	return value, nil
}

// RequireQuery extracts a mandatory query parameter.
func RequireQuery(r *http.Request, key string) (string, error) {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "query parameter is required").WithDetails(map[string]any{"field": key})
	}
	return value, nil
}

// RequireEmailQuery extracts and normalizes a mandatory email parameter.
func RequireEmailQuery(r *http.Request, key string) (string, error) {
	value, err := RequireQuery(r, key)
	if err != nil {
		return "", err
	}
	email := strings.ToLower(value)
	if err := validate.Var(email, "email"); err != nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be a valid email").WithDetails(map[string]any{"field": key})
	}
	return email, nil
}
