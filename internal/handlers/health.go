package handlers

import (
	"database/sql"
	"log"
	"net/http"
)

type HealthHandler struct {
	db *sql.DB
}

func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Root is the unauthenticated greeting endpoint.
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"message": "REST APP CONTACTS v1.0"})
}

// Healthchecker verifies store reachability with a trivial query.
func (h *HealthHandler) Healthchecker(w http.ResponseWriter, r *http.Request) {
	var one int
	if err := h.db.QueryRowContext(r.Context(), "SELECT 1").Scan(&one); err != nil {
		log.Printf("healthcheck failed: %v", err)
		respondDetail(w, http.StatusInternalServerError, "Error connecting to the database")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Database is up and running"})
}
