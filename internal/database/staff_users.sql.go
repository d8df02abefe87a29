package database

import (
	"context"

	"github.com/google/uuid"
)

const getStaffUser = `-- name: GetStaffUser :one
SELECT id, email, role, password_hash, created_at, updated_at FROM staff_users
WHERE id = $1
`

func (q *Queries) GetStaffUser(ctx context.Context, id uuid.UUID) (StaffUser, error) {
	row := q.db.QueryRow(ctx, getStaffUser, id)
	var i StaffUser
	err := row.Scan(
		&i.ID,
		&i.Email,
		&i.Role,
		&i.PasswordHash,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getStaffUserByEmail = `-- name: GetStaffUserByEmail :one
SELECT id, email, role, password_hash, created_at, updated_at FROM staff_users
WHERE email = $1
`

func (q *Queries) GetStaffUserByEmail(ctx context.Context, email string) (StaffUser, error) {
	row := q.db.QueryRow(ctx, getStaffUserByEmail, email)
	var i StaffUser
	err := row.Scan(
		&i.ID,
		&i.Email,
		&i.Role,
		&i.PasswordHash,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const upsertStaffUser = `-- name: UpsertStaffUser :one
INSERT INTO staff_users (id, email, role, password_hash)
VALUES ($1, $2, $3, $4)
ON CONFLICT (email) DO UPDATE
SET role = EXCLUDED.role, password_hash = EXCLUDED.password_hash, updated_at = now()
RETURNING id, email, role, password_hash, created_at, updated_at
`

type UpsertStaffUserParams struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"password_hash"`
}

func (q *Queries) UpsertStaffUser(ctx context.Context, arg UpsertStaffUserParams) (StaffUser, error) {
	row := q.db.QueryRow(ctx, upsertStaffUser,
		arg.ID,
		arg.Email,
		arg.Role,
		arg.PasswordHash,
	)
	var i StaffUser
	err := row.Scan(
		&i.ID,
		&i.Email,
		&i.Role,
		&i.PasswordHash,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const ensureStaffUser = `-- name: EnsureStaffUser :exec
INSERT INTO staff_users (id, email, role, password_hash)
VALUES ($1, $2, $3, '')
ON CONFLICT DO NOTHING
`

type EnsureStaffUserParams struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
}

func (q *Queries) EnsureStaffUser(ctx context.Context, arg EnsureStaffUserParams) error {
	_, err := q.db.Exec(ctx, ensureStaffUser, arg.ID, arg.Email, arg.Role)
	return err
}
