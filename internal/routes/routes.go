package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/paukdv/web-14/internal/handlers"
	"github.com/paukdv/web-14/internal/middleware"
	"github.com/paukdv/web-14/internal/models"
)

// Permitted-role sets per endpoint group. Plain data; every set is
// enumerated in full because the gate checks membership, not hierarchy.
var (
	readContactRoles   = []models.Role{models.RoleAdmin, models.RoleModerator, models.RoleUser}
	createContactRoles = []models.Role{models.RoleAdmin, models.RoleModerator, models.RoleUser}
	updateContactRoles = []models.Role{models.RoleAdmin, models.RoleModerator}
	deleteContactRoles = []models.Role{models.RoleAdmin}
	avatarRoles        = []models.Role{models.RoleAdmin, models.RoleModerator, models.RoleUser}
)

type Deps struct {
	Health    *handlers.HealthHandler
	Auth      *handlers.AuthHandler
	Users     *handlers.UsersHandler
	Contacts  *handlers.ContactsHandler
	Guard     *middleware.Guard
	RateLimit func(http.Handler) http.Handler
	LoginRate func(http.Handler) http.Handler
}

func Setup(r *chi.Mux, d Deps) {
	r.Get("/", d.Health.Root)
	r.Get("/healthchecker", d.Health.Healthchecker)

	r.Route("/auth", func(r chi.Router) {
		r.With(d.LoginRate).Post("/signup", d.Auth.Signup)
		r.With(d.LoginRate).Post("/login", d.Auth.Login)
		r.Post("/refresh", d.Auth.Refresh)
		r.Get("/confirm/{token}", d.Auth.ConfirmEmail)
	})

	r.Route("/users", func(r chi.Router) {
		r.With(d.Guard.Require(avatarRoles...)).Patch("/avatar", d.Users.UpdateAvatar)
	})

	r.Route("/contacts", func(r chi.Router) {
		read := d.Guard.Require(readContactRoles...)

		r.With(read, d.RateLimit).Get("/", d.Contacts.List)
		r.With(read).Get("/upcoming_birthdays/", d.Contacts.UpcomingBirthdays)
		r.With(read).Get("/by_first_name/{name}", d.Contacts.GetByFirstName)
		r.With(read).Get("/by_last_name/{name}", d.Contacts.GetByLastName)
		r.With(read).Get("/by_email/{email}", d.Contacts.GetByEmail)
		r.With(read).Get("/{id}", d.Contacts.GetByID)

		r.With(d.Guard.Require(createContactRoles...)).Post("/", d.Contacts.Create)
		r.With(d.Guard.Require(updateContactRoles...)).Put("/{id}", d.Contacts.Update)
		r.With(d.Guard.Require(deleteContactRoles...)).Delete("/{id}", d.Contacts.Delete)
	})
}
