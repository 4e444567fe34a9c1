package models

import (
	"time"

	"github.com/google/uuid"
)

// Contact is a shared contact-book entry. There is no owner linkage: any
// identity whose role passes the route's check may read or mutate any row.
type Contact struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email"`
	PhoneNumber    string `json:"phone_number"`
	Birthday       Date   `json:"birthday"`
	AdditionalData string `json:"additional_data"`
}
