package db

import (
	"context"

	"siport/internal/types"
)

// ConnectionRepo provides data access for the connections table.
// It implements types.ConnectionStore.
type ConnectionRepo struct {
	db DBTX
}

// NewConnectionRepo creates a new ConnectionRepo backed by the given
// database connection (pool or transaction).
func NewConnectionRepo(db DBTX) *ConnectionRepo {
	return &ConnectionRepo{db: db}
}

var _ types.ConnectionStore = (*ConnectionRepo)(nil)

// Create inserts a new pending connection request.
func (r *ConnectionRepo) Create(ctx context.Context, conn *types.Connection) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO connections (id, from_user, to_user, status, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		conn.ID, conn.FromUser, conn.ToUser, conn.Status, conn.CreatedAt,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to insert connection request", err)
	}
	return nil
}

// MessageRepo provides data access for the messages outbox table. The
// external chat transport consumes rows from here; this core only enqueues.
// It implements types.MessageStore.
type MessageRepo struct {
	db DBTX
}

// NewMessageRepo creates a new MessageRepo backed by the given database
// connection (pool or transaction).
func NewMessageRepo(db DBTX) *MessageRepo {
	return &MessageRepo{db: db}
}

var _ types.MessageStore = (*MessageRepo)(nil)

// Create enqueues a message for delivery.
func (r *MessageRepo) Create(ctx context.Context, msg *types.Message) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO messages (id, conversation_id, sender_id, body, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		msg.ID, msg.ConversationID, msg.SenderID, msg.Body, msg.CreatedAt,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to enqueue message", err)
	}
	return nil
}

// MeetingRepo provides data access for the meetings table.
// It implements types.MeetingStore.
type MeetingRepo struct {
	db DBTX
}

// NewMeetingRepo creates a new MeetingRepo backed by the given database
// connection (pool or transaction).
func NewMeetingRepo(db DBTX) *MeetingRepo {
	return &MeetingRepo{db: db}
}

var _ types.MeetingStore = (*MeetingRepo)(nil)

// Create inserts a new meeting request.
func (r *MeetingRepo) Create(ctx context.Context, m *types.Meeting) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO meetings (id, requester_id, invitee_id, starts_at, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		m.ID, m.RequesterID, m.InviteeID, m.StartsAt, m.Status, m.CreatedAt,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to insert meeting request", err)
	}
	return nil
}
