package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"siport/internal/types"
)

// ProfileRepo resolves user records from the local profiles mirror. It
// implements types.UserDirectory for deployments that sync the user store
// into Postgres; deployments without a mirror wire the HTTP directory from
// internal/external instead.
type ProfileRepo struct {
	db DBTX
}

// NewProfileRepo creates a new ProfileRepo backed by the given database
// connection (pool or transaction).
func NewProfileRepo(db DBTX) *ProfileRepo {
	return &ProfileRepo{db: db}
}

var _ types.UserDirectory = (*ProfileRepo)(nil)

// GetProfile returns the live role and tier/pass-status for a user. The
// pass_status column carries legacy free-form values for records created
// before the closed tier enum existed; the resolver normalizes them.
func (r *ProfileRepo) GetProfile(ctx context.Context, userID string) (*types.UserProfile, error) {
	var p types.UserProfile
	err := r.db.QueryRow(ctx,
		`SELECT user_id, role, COALESCE(tier, ''), COALESCE(pass_status, '')
		 FROM profiles
		 WHERE user_id = $1`,
		userID,
	).Scan(&p.UserID, &p.Role, &p.Tier, &p.PassStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundUser, "user not found", nil)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to load user profile", err)
	}
	return &p, nil
}
