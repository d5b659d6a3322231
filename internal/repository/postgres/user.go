package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/olopez/tasknest/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

const userColumns = `id, username, email, password_hash, is_verified, verification_token,
			  password_reset_token, password_reset_expires, profile_image, created_at, updated_at`

type UserRepository struct {
	db *Connection
}

func NewUserRepository(db *Connection) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := r.scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := r.scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetByVerificationToken(ctx context.Context, token string) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE verification_token = $1`

	user, err := r.scanUser(r.db.QueryRow(ctx, query, token))
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user by verification token: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetByResetToken(ctx context.Context, token string, now time.Time) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
			  WHERE password_reset_token = $1 AND password_reset_expires > $2`

	user, err := r.scanUser(r.db.QueryRow(ctx, query, token, now))
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user by reset token: %w", err)
	}
	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	query := `INSERT INTO users (id, username, email, password_hash, is_verified, verification_token,
			  password_reset_token, password_reset_expires, profile_image, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			  RETURNING ` + userColumns

	saved, err := r.scanUser(r.db.QueryRow(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash, user.IsVerified, user.VerificationToken,
		user.PasswordResetToken, user.PasswordResetExpires, user.ProfileImage, user.CreatedAt, user.UpdatedAt,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return model.User{}, model.ErrEmailTaken
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return saved, nil
}

func (r *UserRepository) Save(ctx context.Context, user model.User) (model.User, error) {
	query := `UPDATE users SET username = $2, email = $3, password_hash = $4, is_verified = $5,
			  verification_token = $6, password_reset_token = $7, password_reset_expires = $8,
			  profile_image = $9, updated_at = NOW()
			  WHERE id = $1
			  RETURNING ` + userColumns

	saved, err := r.scanUser(r.db.QueryRow(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash, user.IsVerified,
		user.VerificationToken, user.PasswordResetToken, user.PasswordResetExpires, user.ProfileImage,
	))
	if err != nil {
		return model.User{}, fmt.Errorf("failed to save user: %w", err)
	}
	return saved, nil
}

func (r *UserRepository) scanUser(row pgx.Row) (model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.IsVerified, &user.VerificationToken,
		&user.PasswordResetToken, &user.PasswordResetExpires, &user.ProfileImage, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, err
	}
	return user, nil
}
