package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hasan-mia/manufacturer-server/internal/apperror"
	"github.com/hasan-mia/manufacturer-server/internal/model"
	"github.com/hasan-mia/manufacturer-server/internal/repository"
)

// UserStore implements repository.UserRepository on the users table.
type UserStore struct {
	conn *sql.DB
}

var _ repository.UserRepository = (*UserStore)(nil)

// Upsert writes the profile of the identity keyed by user.Email, inserting
// the record on first sign-in. The role column is deliberately absent from
// the UPDATE: signing in again can never grant or revoke admin.
//
// The select-then-write pattern (rather than ON CONFLICT) keeps the created
// flag trivial and preserves created_at on updates.
func (s *UserStore) Upsert(ctx context.Context, user *model.User) (model.UpsertResult, error) {
	var existing string
	err := s.conn.QueryRowContext(ctx,
		`SELECT email FROM users WHERE email = ?`, user.Email,
	).Scan(&existing)

	if err != nil && err != sql.ErrNoRows {
		return model.UpsertResult{}, fmt.Errorf("sqlite: looking up user %s: %w", user.Email, err)
	}

	now := time.Now()
	user.UpdatedAt = now

	if existing != "" {
		_, err = s.conn.ExecContext(ctx,
			`UPDATE users
			 SET name = ?, phone = ?, about = ?, education = ?, profession = ?,
			     address = ?, linkedin = ?, img = ?, updated_at = ?
			 WHERE email = ?`,
			user.Name,
			user.Phone,
			user.About,
			user.Education,
			user.Profession,
			user.Address,
			user.LinkedIn,
			user.Img,
			user.UpdatedAt,
			user.Email,
		)
		if err != nil {
			return model.UpsertResult{}, fmt.Errorf("sqlite: updating user %s: %w", user.Email, err)
		}
		return model.UpsertResult{Created: false}, nil
	}

	user.CreatedAt = now
	_, err = s.conn.ExecContext(ctx,
		`INSERT INTO users (email, name, phone, about, education, profession,
		                    address, linkedin, img, role, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.Email,
		user.Name,
		user.Phone,
		user.About,
		user.Education,
		user.Profession,
		user.Address,
		user.LinkedIn,
		user.Img,
		user.Role,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return model.UpsertResult{}, fmt.Errorf("sqlite: inserting user %s: %w", user.Email, err)
	}

	return model.UpsertResult{Created: true}, nil
}

// GetByEmail returns the identity for the email, or apperror.ErrNotFound.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User

	err := s.conn.QueryRowContext(ctx,
		`SELECT email, name, phone, about, education, profession,
		        address, linkedin, img, role, created_at, updated_at
		 FROM users WHERE email = ?`,
		email,
	).Scan(
		&u.Email,
		&u.Name,
		&u.Phone,
		&u.About,
		&u.Education,
		&u.Profession,
		&u.Address,
		&u.LinkedIn,
		&u.Img,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", email, err)
	}

	return &u, nil
}

// List returns all identities, newest first.
func (s *UserStore) List(ctx context.Context) ([]model.User, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT email, name, phone, about, education, profession,
		        address, linkedin, img, role, created_at, updated_at
		 FROM users
		 ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(
			&u.Email, &u.Name, &u.Phone, &u.About, &u.Education, &u.Profession,
			&u.Address, &u.LinkedIn, &u.Img, &u.Role, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating users: %w", err)
	}

	return users, nil
}

// SetRole updates the role of an existing identity. Promotion never creates
// a record: an unknown email is NotFound.
func (s *UserStore) SetRole(ctx context.Context, email, role string) error {
	result, err := s.conn.ExecContext(ctx,
		`UPDATE users SET role = ?, updated_at = ? WHERE email = ?`,
		role, time.Now(), email,
	)
	if err != nil {
		return fmt.Errorf("sqlite: setting role for %s: %w", email, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", email)
	}

	return nil
}

// Delete removes the identity for the email.
func (s *UserStore) Delete(ctx context.Context, email string) error {
	result, err := s.conn.ExecContext(ctx,
		`DELETE FROM users WHERE email = ?`,
		email,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting user %s: %w", email, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", email)
	}

	return nil
}
