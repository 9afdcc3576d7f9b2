package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/n20-backend/Muhammadaziz-Ekubov/internal/model"
)

// ProfileRepo provides CRUD operations for user profiles. Each user owns
// at most one profile row.
type ProfileRepo struct {
	db *sql.DB
}

// NewProfileRepo returns a new ProfileRepo bound to the given database.
func NewProfileRepo(db *sql.DB) *ProfileRepo { return &ProfileRepo{db: db} }

const profileColumns = "id,user_id,first_name,last_name,phone_number,address,avatar_url,status_message,created_at,updated_at"

// Create inserts a profile for the user. A second profile for the same
// user trips the unique index and returns ErrConflict.
func (r *ProfileRepo) Create(ctx context.Context, p model.Profile) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO user_profiles (user_id, first_name, last_name, phone_number, address, avatar_url, status_message) VALUES (?,?,?,?,?,?,?)",
		p.UserID, p.FirstName, p.LastName, p.PhoneNumber, p.Address, p.AvatarURL, p.StatusMessage)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrConflict
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByUserID returns the profile owned by the given user.
func (r *ProfileRepo) GetByUserID(ctx context.Context, userID uint64) (model.Profile, error) {
	var p model.Profile
	err := r.db.QueryRowContext(ctx,
		"SELECT "+profileColumns+" FROM user_profiles WHERE user_id=? LIMIT 1",
		userID).Scan(&p.ID, &p.UserID, &p.FirstName, &p.LastName, &p.PhoneNumber,
		&p.Address, &p.AvatarURL, &p.StatusMessage, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Profile{}, ErrNotFound
		}
		return model.Profile{}, err
	}
	return p, nil
}

// List returns all profiles ordered by creation time.
func (r *ProfileRepo) List(ctx context.Context) ([]model.Profile, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+profileColumns+" FROM user_profiles ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	profiles := make([]model.Profile, 0)
	for rows.Next() {
		var p model.Profile
		if err := rows.Scan(&p.ID, &p.UserID, &p.FirstName, &p.LastName, &p.PhoneNumber,
			&p.Address, &p.AvatarURL, &p.StatusMessage, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return profiles, nil
}

// Update overwrites the mutable profile fields. Fields left nil in the
// input clear the corresponding column, matching PUT semantics.
func (r *ProfileRepo) Update(ctx context.Context, p model.Profile) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE user_profiles SET first_name=?, last_name=?, phone_number=?, address=?, avatar_url=?, status_message=?, updated_at=NOW() WHERE user_id=?",
		p.FirstName, p.LastName, p.PhoneNumber, p.Address, p.AvatarURL, p.StatusMessage, p.UserID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Delete removes the profile owned by the given user.
func (r *ProfileRepo) Delete(ctx context.Context, userID uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM user_profiles WHERE user_id=?", userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}
