package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"reno_server/server/accounts/domain"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already exists")
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create inserts the user, or reports ErrEmailTaken if the email is
// already registered. The conflict check and the insert are one
// statement, so two racing signups cannot both win.
func (r *UserRepository) Create(ctx context.Context, user domain.User) error {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO users(email, user_id, name, password_hash, company, phone, created_at, updated_at)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (email) DO NOTHING
	`, user.Email, user.UserID, user.Name, user.PasswordHash, user.Company, user.Phone, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEmailTaken
	}
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	var user domain.User
	err := r.pool.QueryRow(ctx, `
		SELECT email, user_id, name, password_hash, company, phone, created_at, updated_at
		FROM users
		WHERE email = $1
	`, email).Scan(&user.Email, &user.UserID, &user.Name, &user.PasswordHash,
		&user.Company, &user.Phone, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, ErrNotFound
	}
	return user, err
}
