// Package handlers exposes a cache.Cache over a small JSON admin API.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"mouscache/internal/cache"
	"mouscache/internal/circuitbreaker"
	"mouscache/internal/common/errors"
	"mouscache/internal/common/logging"
)

// HealthChecker is implemented by remote backends that can be pinged.
type HealthChecker interface {
	Health() error
}

type Handlers struct {
	cache    cache.Cache
	backend  string
	remote   HealthChecker
	breaker  *circuitbreaker.GoBreakerAdapter
	validate *validator.Validate
}

// New creates the handlers. remote and breaker are nil for the memory backend.
func New(c cache.Cache, backend string, remote HealthChecker, breaker *circuitbreaker.GoBreakerAdapter) *Handlers {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	return &Handlers{
		cache:    c,
		backend:  backend,
		remote:   remote,
		breaker:  breaker,
		validate: v,
	}
}

// HealthCheck reports the backend and, for Redis, whether it answers.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	body := map[string]interface{}{
		"status":  "ok",
		"backend": h.backend,
	}

	if h.remote != nil {
		if err := h.remote.Health(); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
			body["redis"] = err.Error()
		} else {
			body["redis"] = "ok"
		}
	}
	if h.breaker != nil {
		body["circuit_breaker"] = h.breaker.Stats()
	}

	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func statusFor(err error) int {
	switch errors.GetType(err) {
	case errors.ErrTypeValidation, errors.ErrTypeParse:
		return http.StatusBadRequest
	case errors.ErrTypeNotFound:
		return http.StatusNotFound
	case errors.ErrTypeCapacity:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logging.GetGlobalLogger().WithContext(r.Context()).Error("Cache operation failed", err,
			logging.Field{Key: "path", Value: r.URL.Path},
		)
	}

	writeJSON(w, status, map[string]string{
		"error": err.Error(),
		"type":  string(errors.GetType(err)),
	})
}

// decode reads a JSON body into dst and checks its validate tags.
func (h *Handlers) decode(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.ValidationError(fmt.Sprintf("invalid request body: %v", err))
	}

	if err := h.validate.Struct(dst); err != nil {
		fieldErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return errors.ValidationError(err.Error())
		}
		messages := make([]string, len(fieldErrors))
		for i, fe := range fieldErrors {
			messages[i] = fmt.Sprintf("field '%s' failed on '%s'", fe.Field(), fe.Tag())
		}
		return errors.ValidationError(strings.Join(messages, "; "))
	}
	return nil
}
