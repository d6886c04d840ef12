package handlers

import "github.com/gorilla/mux"

// Register mounts every endpoint on router.
func (h *Handlers) Register(router *mux.Router) {
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/hashes/{key}", h.GetHash).Methods("GET")
	api.HandleFunc("/hashes/{key}/{field}", h.GetHashField).Methods("GET")
	api.HandleFunc("/hashes/{key}/{field}", h.SetHashField).Methods("PUT")
	api.HandleFunc("/hashes/{key}/{field}", h.DeleteHashField).Methods("DELETE")

	api.HandleFunc("/sets/{key}", h.GetSet).Methods("GET")
	api.HandleFunc("/sets/{key}/members", h.AddSetMembers).Methods("POST")
	api.HandleFunc("/sets/{key}/members/{member}", h.RemoveSetMember).Methods("DELETE")
	api.HandleFunc("/sets/{key}/move", h.MoveSetMember).Methods("POST")

	api.HandleFunc("/algebra/{op:diff|inter|union}", h.Compute).Methods("POST")
	api.HandleFunc("/algebra/{op:diff|inter|union}/store", h.Store).Methods("POST")
}
