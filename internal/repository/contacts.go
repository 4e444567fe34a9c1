package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/paukdv/web-14/internal/models"
)

// Contacts is the shared contact book. Methods report absence with empty
// results (nil pointer, empty slice, zero affected rows) rather than
// errors; the handler layer translates absence into 404.
type Contacts interface {
	List(ctx context.Context) ([]models.Contact, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Contact, error)
	GetByEmail(ctx context.Context, email string) (*models.Contact, error)
	FindByFirstName(ctx context.Context, firstName string) ([]models.Contact, error)
	FindByLastName(ctx context.Context, lastName string) ([]models.Contact, error)
	UpcomingBirthdays(ctx context.Context, now time.Time) ([]models.Contact, error)
	Create(ctx context.Context, c *models.Contact) (*models.Contact, error)
	Update(ctx context.Context, id uuid.UUID, c *models.Contact) (*models.Contact, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

type ContactsRepo struct {
	db *sql.DB
}

func NewContactsRepo(db *sql.DB) *ContactsRepo {
	return &ContactsRepo{db: db}
}

const contactColumns = `id, created_at, first_name, last_name, email, phone_number, birthday, additional_data`

func scanContact(row *sql.Row) (*models.Contact, error) {
	var c models.Contact
	var additional sql.NullString
	err := row.Scan(&c.ID, &c.CreatedAt, &c.FirstName, &c.LastName, &c.Email,
		&c.PhoneNumber, &c.Birthday, &additional)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	c.AdditionalData = additional.String
	return &c, nil
}

func collectContacts(rows *sql.Rows) ([]models.Contact, error) {
	defer rows.Close()
	contacts := make([]models.Contact, 0)
	for rows.Next() {
		var c models.Contact
		var additional sql.NullString
		if err := rows.Scan(&c.ID, &c.CreatedAt, &c.FirstName, &c.LastName, &c.Email,
			&c.PhoneNumber, &c.Birthday, &additional); err != nil {
			return nil, err
		}
		c.AdditionalData = additional.String
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

func (r *ContactsRepo) List(ctx context.Context) ([]models.Contact, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+contactColumns+` FROM contacts ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	return collectContacts(rows)
}

func (r *ContactsRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Contact, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE id = $1`, id)
	return scanContact(row)
}

func (r *ContactsRepo) GetByEmail(ctx context.Context, email string) (*models.Contact, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE email = $1`, email)
	return scanContact(row)
}

func (r *ContactsRepo) FindByFirstName(ctx context.Context, firstName string) ([]models.Contact, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE first_name = $1 ORDER BY created_at`, firstName)
	if err != nil {
		return nil, err
	}
	return collectContacts(rows)
}

func (r *ContactsRepo) FindByLastName(ctx context.Context, lastName string) ([]models.Contact, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE last_name = $1 ORDER BY created_at`, lastName)
	if err != nil {
		return nil, err
	}
	return collectContacts(rows)
}

// UpcomingBirthdays returns contacts whose birthday (month/day, year
// ignored) falls within the next seven days of now, both boundary days
// included. Wall clock of the caller; no timezone normalization.
func (r *ContactsRepo) UpcomingBirthdays(ctx context.Context, now time.Time) ([]models.Contact, error) {
	keys := BirthdayWindow(now, 7)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+contactColumns+` FROM contacts
		 WHERE to_char(birthday, 'MM-DD') = ANY($1)
		 ORDER BY to_char(birthday, 'MM-DD')`, pq.Array(keys))
	if err != nil {
		return nil, err
	}
	return collectContacts(rows)
}

// BirthdayWindow lists the MM-DD keys for today through today+days
// inclusive. In non-leap years Feb 29 never appears, so a Feb 29
// birthday is matched on Mar 1 instead.
func BirthdayWindow(now time.Time, days int) []string {
	seen := make(map[string]bool, days+2)
	keys := make([]string, 0, days+2)
	for i := 0; i <= days; i++ {
		day := now.AddDate(0, 0, i)
		key := day.Format("01-02")
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
		// A window crossing Mar 1 must also cover Feb 29 birthdays in
		// years where the calendar skips that day.
		if key == "03-01" && !isLeap(day.Year()) && !seen["02-29"] {
			seen["02-29"] = true
			keys = append(keys, "02-29")
		}
	}
	return keys
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func (r *ContactsRepo) Create(ctx context.Context, c *models.Contact) (*models.Contact, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO contacts (first_name, last_name, email, phone_number, birthday, additional_data)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+contactColumns,
		c.FirstName, c.LastName, c.Email, c.PhoneNumber, c.Birthday, c.AdditionalData)
	created, err := scanContact(row)
	if err != nil {
		return nil, translateUnique(err)
	}
	return created, nil
}

// Update replaces every mutable field. Returns (nil, nil) when no row
// matches id.
func (r *ContactsRepo) Update(ctx context.Context, id uuid.UUID, c *models.Contact) (*models.Contact, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE contacts
		SET first_name = $1, last_name = $2, email = $3, phone_number = $4, birthday = $5, additional_data = $6
		WHERE id = $7
		RETURNING `+contactColumns,
		c.FirstName, c.LastName, c.Email, c.PhoneNumber, c.Birthday, c.AdditionalData, id)
	updated, err := scanContact(row)
	if err != nil {
		return nil, translateUnique(err)
	}
	return updated, nil
}

// Delete removes a contact and reports how many rows matched.
func (r *ContactsRepo) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
