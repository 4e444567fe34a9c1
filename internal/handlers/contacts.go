package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/paukdv/web-14/internal/models"
	"github.com/paukdv/web-14/internal/repository"
)

// ContactRequest is the create/update payload for a contact.
type ContactRequest struct {
	FirstName      string      `json:"first_name"`
	LastName       string      `json:"last_name"`
	Email          string      `json:"email"`
	PhoneNumber    string      `json:"phone_number"`
	Birthday       models.Date `json:"birthday"`
	AdditionalData string      `json:"additional_data"`
}

func (req *ContactRequest) validate() string {
	switch {
	case req.FirstName == "":
		return "First name is required"
	case req.LastName == "":
		return "Last name is required"
	case req.Email == "":
		return "Email is required"
	case req.PhoneNumber == "":
		return "Phone number is required"
	case req.Birthday.IsZero():
		return "Birthday is required"
	}
	return ""
}

type ContactsHandler struct {
	contacts repository.Contacts
}

func NewContactsHandler(contacts repository.Contacts) *ContactsHandler {
	return &ContactsHandler{contacts: contacts}
}

func (h *ContactsHandler) List(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.contacts.List(r.Context())
	if err != nil {
		respondDetail(w, http.StatusInternalServerError, "Database error")
		return
	}
	respondJSON(w, http.StatusOK, contacts)
}

func (h *ContactsHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := contactID(w, r)
	if !ok {
		return
	}
	contact, err := h.contacts.GetByID(r.Context(), id)
	if err != nil {
		respondDetail(w, http.StatusInternalServerError, "Database error")
		return
	}
	if contact == nil {
		respondDetail(w, http.StatusNotFound, "Not found")
		return
	}
	respondJSON(w, http.StatusOK, contact)
}

func (h *ContactsHandler) GetByFirstName(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.contacts.FindByFirstName(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		respondDetail(w, http.StatusInternalServerError, "Database error")
		return
	}
	if len(contacts) == 0 {
		respondDetail(w, http.StatusNotFound, "First_name Not found")
		return
	}
	respondJSON(w, http.StatusOK, contacts)
}

func (h *ContactsHandler) GetByLastName(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.contacts.FindByLastName(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		respondDetail(w, http.StatusInternalServerError, "Database error")
		return
	}
	if len(contacts) == 0 {
		respondDetail(w, http.StatusNotFound, "Last_name Not found")
		return
	}
	respondJSON(w, http.StatusOK, contacts)
}

func (h *ContactsHandler) GetByEmail(w http.ResponseWriter, r *http.Request) {
	contact, err := h.contacts.GetByEmail(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		respondDetail(w, http.StatusInternalServerError, "Database error")
		return
	}
	if contact == nil {
		respondDetail(w, http.StatusNotFound, "Email Not found")
		return
	}
	respondJSON(w, http.StatusOK, contact)
}

// UpcomingBirthdays lists contacts whose birthday falls within the next
// seven days of the call, boundary days included.
func (h *ContactsHandler) UpcomingBirthdays(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.contacts.UpcomingBirthdays(r.Context(), time.Now())
	if err != nil {
		respondDetail(w, http.StatusInternalServerError, "Database error")
		return
	}
	if len(contacts) == 0 {
		respondDetail(w, http.StatusNotFound, "No upcoming birthdays found")
		return
	}
	respondJSON(w, http.StatusOK, contacts)
}

func (h *ContactsHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeContact(w, r)
	if !ok {
		return
	}

	created, err := h.contacts.Create(r.Context(), req)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			respondDetail(w, http.StatusConflict, "Contact with this email already exists")
			return
		}
		respondDetail(w, http.StatusInternalServerError, "Database error")
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (h *ContactsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := contactID(w, r)
	if !ok {
		return
	}
	req, ok := decodeContact(w, r)
	if !ok {
		return
	}

	updated, err := h.contacts.Update(r.Context(), id, req)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			respondDetail(w, http.StatusConflict, "Contact with this email already exists")
			return
		}
		respondDetail(w, http.StatusInternalServerError, "Database error")
		return
	}
	if updated == nil {
		respondDetail(w, http.StatusNotFound, "Not found")
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *ContactsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := contactID(w, r)
	if !ok {
		return
	}

	affected, err := h.contacts.Delete(r.Context(), id)
	if err != nil {
		respondDetail(w, http.StatusInternalServerError, "Database error")
		return
	}
	if affected == 0 {
		respondDetail(w, http.StatusNotFound, "Not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func contactID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondDetail(w, http.StatusUnprocessableEntity, "Invalid contact id")
		return uuid.Nil, false
	}
	return id, true
}

func decodeContact(w http.ResponseWriter, r *http.Request) (*models.Contact, bool) {
	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondDetail(w, http.StatusUnprocessableEntity, "Invalid request body")
		return nil, false
	}
	if msg := req.validate(); msg != "" {
		respondDetail(w, http.StatusUnprocessableEntity, msg)
		return nil, false
	}
	return &models.Contact{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		PhoneNumber:    req.PhoneNumber,
		Birthday:       req.Birthday,
		AdditionalData: req.AdditionalData,
	}, true
}
