package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
)

type algebraRequest struct {
	Keys []string `json:"keys" validate:"required,min=1,dive,required"`
}

type storeRequest struct {
	Destination string   `json:"destination" validate:"required"`
	Keys        []string `json:"keys" validate:"required,min=1,dive,required"`
}

type (
	computeFunc func(ctx context.Context, keys ...string) ([]string, error)
	storeFunc   func(ctx context.Context, destination string, keys ...string) (int64, error)
)

func (h *Handlers) computeOps() map[string]computeFunc {
	return map[string]computeFunc{
		"diff":  h.cache.SetDiff,
		"inter": h.cache.SetInter,
		"union": h.cache.SetUnion,
	}
}

func (h *Handlers) storeOps() map[string]storeFunc {
	return map[string]storeFunc{
		"diff":  h.cache.SetDiffStore,
		"inter": h.cache.SetInterStore,
		"union": h.cache.SetUnionStore,
	}
}

// Compute runs diff, inter or union over the requested keys in order.
func (h *Handlers) Compute(w http.ResponseWriter, r *http.Request) {
	op, ok := h.computeOps()[mux.Vars(r)["op"]]
	if !ok {
		http.NotFound(w, r)
		return
	}

	var req algebraRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	members, err := op(r.Context(), req.Keys...)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"members": members})
}

// Store runs diff, inter or union and writes the result into destination.
func (h *Handlers) Store(w http.ResponseWriter, r *http.Request) {
	op, ok := h.storeOps()[mux.Vars(r)["op"]]
	if !ok {
		http.NotFound(w, r)
		return
	}

	var req storeRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	card, err := op(r.Context(), req.Destination, req.Keys...)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"destination": req.Destination,
		"cardinality": card,
	})
}
