package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/paukdv/web-14/internal/models"
)

// Users persists user records. Absence is communicated by (nil, nil);
// callers decide whether that is an error.
type Users interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, username, email, hashedPassword string) (*models.User, error)
	UpdateRefreshToken(ctx context.Context, email string, token *string) error
	ConfirmEmail(ctx context.Context, email string) error
	UpdateAvatar(ctx context.Context, email, url string) (*models.User, error)
}

type UsersRepo struct {
	db *sql.DB
}

func NewUsersRepo(db *sql.DB) *UsersRepo {
	return &UsersRepo{db: db}
}

const userColumns = `id, created_at, username, email, password, avatar, refresh_token, role, confirmed`

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	var avatar, refreshToken sql.NullString
	err := row.Scan(&u.ID, &u.CreatedAt, &u.Username, &u.Email, &u.Password,
		&avatar, &refreshToken, &u.Role, &u.Confirmed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if avatar.Valid {
		u.Avatar = &avatar.String
	}
	if refreshToken.Valid {
		u.RefreshToken = &refreshToken.String
	}
	return &u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// Create inserts an unconfirmed user with the default role.
func (r *UsersRepo) Create(ctx context.Context, username, email, hashedPassword string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO users (username, email, password)
		VALUES ($1, $2, $3)
		RETURNING `+userColumns,
		username, email, hashedPassword)
	u, err := scanUser(row)
	if err != nil {
		return nil, translateUnique(err)
	}
	return u, nil
}

// UpdateRefreshToken overwrites the stored refresh token. A nil token
// clears it, which revokes the user's refresh capability.
func (r *UsersRepo) UpdateRefreshToken(ctx context.Context, email string, token *string) error {
	var value sql.NullString
	if token != nil {
		value = sql.NullString{String: *token, Valid: true}
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET refresh_token = $1 WHERE email = $2`, value, email)
	return err
}

func (r *UsersRepo) ConfirmEmail(ctx context.Context, email string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET confirmed = TRUE WHERE email = $1`, email)
	return err
}

func (r *UsersRepo) UpdateAvatar(ctx context.Context, email, url string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE users SET avatar = $1 WHERE email = $2
		RETURNING `+userColumns,
		url, email)
	return scanUser(row)
}
