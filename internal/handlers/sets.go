package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/samber/lo"
)

type membersRequest struct {
	Members []string `json:"members" validate:"required,min=1"`
}

type moveRequest struct {
	Destination string `json:"destination" validate:"required"`
	Member      string `json:"member" validate:"required"`
}

// GetSet returns the members and cardinality of a set.
func (h *Handlers) GetSet(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	members, err := h.cache.SetMembers(r.Context(), key)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"key":         key,
		"members":     members,
		"cardinality": len(members),
	})
}

// AddSetMembers adds members, creating the set if needed.
func (h *Handlers) AddSetMembers(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	var req membersRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	members := lo.Map(req.Members, func(m string, _ int) interface{} { return m })
	if _, err := h.cache.SetAdd(r.Context(), key, members...); err != nil {
		h.writeError(w, r, err)
		return
	}

	card, err := h.cache.SetCard(r.Context(), key)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"cardinality": card})
}

// RemoveSetMember removes one member and reports whether it was present.
func (h *Handlers) RemoveSetMember(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	removed, err := h.cache.SetRem(r.Context(), vars["key"], vars["member"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}

// MoveSetMember moves a member into an existing destination set.
func (h *Handlers) MoveSetMember(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	var req moveRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	moved, err := h.cache.SetMove(r.Context(), key, req.Destination, req.Member)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"moved": moved})
}
