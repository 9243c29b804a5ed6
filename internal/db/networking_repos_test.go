package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"siport/internal/types"
)

func TestConnectionRepo_Create_Success(t *testing.T) {
	db := new(mockDBTX)
	repo := NewConnectionRepo(db)

	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	err := repo.Create(context.Background(), &types.Connection{
		ID:        "conn_1",
		FromUser:  "user_1",
		ToUser:    "user_2",
		Status:    types.ConnectionPending,
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	db.AssertExpectations(t)
}

func TestConnectionRepo_Create_DBError(t *testing.T) {
	db := new(mockDBTX)
	repo := NewConnectionRepo(db)

	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.CommandTag{}, errors.New("deadlock detected"))

	err := repo.Create(context.Background(), &types.Connection{ID: "conn_1"})
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeInternalDB, appErr.Code)
}

func TestMessageRepo_Create_Success(t *testing.T) {
	db := new(mockDBTX)
	repo := NewMessageRepo(db)

	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	err := repo.Create(context.Background(), &types.Message{
		ID:             "msg_1",
		ConversationID: "conv_1",
		SenderID:       "user_1",
		Body:           "see you at hall B",
		CreatedAt:      time.Now().UTC(),
	})
	require.NoError(t, err)
}

func TestMeetingRepo_Create_DBError(t *testing.T) {
	db := new(mockDBTX)
	repo := NewMeetingRepo(db)

	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.CommandTag{}, errors.New("connection reset"))

	err := repo.Create(context.Background(), &types.Meeting{ID: "mtg_1"})
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeInternalDB, appErr.Code)
}
