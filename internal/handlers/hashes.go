package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"mouscache/internal/common/errors"
)

type hashValueRequest struct {
	Value string `json:"value"`
	NX    bool   `json:"nx"`
}

// GetHash returns every field of a hash. An absent hash has no fields.
func (h *Handlers) GetHash(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	ctx := r.Context()

	fields, err := h.cache.HashKeys(ctx, key)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	values, err := h.cache.HashMultipleGet(ctx, key, fields...)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out := make(map[string]string, len(fields))
	for i, f := range fields {
		// A field deleted between the two reads is skipped.
		if values[i] != nil {
			out[f] = *values[i]
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"key":    key,
		"fields": out,
	})
}

// GetHashField returns one field, 404 when absent.
func (h *Handlers) GetHashField(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	value, found, err := h.cache.HashGet(r.Context(), vars["key"], vars["field"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !found {
		h.writeError(w, r, errors.NotFoundError("hash field"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"field": vars["field"],
		"value": value,
	})
}

// SetHashField writes one field. With nx it only writes a missing field and
// reports 409 when the field already exists.
func (h *Handlers) SetHashField(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req hashValueRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	var (
		ok  bool
		err error
	)
	if req.NX {
		ok, err = h.cache.HashSetIfNotExists(r.Context(), vars["key"], vars["field"], req.Value)
	} else {
		ok, err = h.cache.HashSet(r.Context(), vars["key"], vars["field"], req.Value)
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	status := http.StatusOK
	if !ok {
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]bool{"written": ok})
}

// DeleteHashField removes one field; missing fields are not an error.
func (h *Handlers) DeleteHashField(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	if _, err := h.cache.HashDelete(r.Context(), vars["key"], vars["field"]); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
