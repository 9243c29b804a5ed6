package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"siport/internal/types"
)

func TestProfileRepo_GetProfile_Success(t *testing.T) {
	db := new(mockDBTX)
	repo := NewProfileRepo(db)

	row := &mockRow{
		scanFn: func(dest ...any) error {
			*dest[0].(*string) = "user_1"
			*dest[1].(*types.Role) = types.RoleVisitor
			*dest[2].(*types.Tier) = types.TierVisitorPremium
			*dest[3].(*string) = ""
			return nil
		},
	}
	db.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(row)

	p, err := repo.GetProfile(context.Background(), "user_1")
	require.NoError(t, err)
	assert.Equal(t, types.RoleVisitor, p.Role)
	assert.Equal(t, types.TierVisitorPremium, p.Tier)
}

func TestProfileRepo_GetProfile_LegacyPassStatus(t *testing.T) {
	db := new(mockDBTX)
	repo := NewProfileRepo(db)

	row := &mockRow{
		scanFn: func(dest ...any) error {
			*dest[0].(*string) = "user_2"
			*dest[1].(*types.Role) = types.RolePartner
			*dest[2].(*types.Tier) = types.TierNone
			*dest[3].(*string) = "Museum"
			return nil
		},
	}
	db.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(row)

	p, err := repo.GetProfile(context.Background(), "user_2")
	require.NoError(t, err)
	assert.Equal(t, types.TierNone, p.Tier)
	assert.Equal(t, "Museum", p.PassStatus)
}

func TestProfileRepo_GetProfile_NotFound(t *testing.T) {
	db := new(mockDBTX)
	repo := NewProfileRepo(db)

	db.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(&mockRow{scanErr: pgx.ErrNoRows})

	p, err := repo.GetProfile(context.Background(), "ghost")
	require.Error(t, err)
	assert.Nil(t, p)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeNotFoundUser, appErr.Code)
}
