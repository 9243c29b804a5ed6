package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"siport/internal/types"
)

// AppointmentRepo provides data access for the appointments table. It
// implements types.AppointmentStore.
//
// ConfirmedCount is the authoritative read behind the standing appointment
// quota: the count is taken live on every check, never cached, so a
// cancellation immediately frees a unit of quota.
type AppointmentRepo struct {
	db DBTX
}

// NewAppointmentRepo creates a new AppointmentRepo backed by the given
// database connection (pool or transaction).
func NewAppointmentRepo(db DBTX) *AppointmentRepo {
	return &AppointmentRepo{db: db}
}

var _ types.AppointmentStore = (*AppointmentRepo)(nil)

// Create inserts a new appointment row.
func (r *AppointmentRepo) Create(ctx context.Context, appt *types.Appointment) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO appointments (id, time_slot_id, visitor_id, exhibitor_id, status, notes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		appt.ID, appt.TimeSlotID, appt.VisitorID, appt.ExhibitorID,
		appt.Status, appt.Notes, appt.CreatedAt, appt.UpdatedAt,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to insert appointment", err)
	}
	return nil
}

// GetByID returns the appointment with the given ID, or a not-found error.
func (r *AppointmentRepo) GetByID(ctx context.Context, id string) (*types.Appointment, error) {
	var appt types.Appointment
	err := r.db.QueryRow(ctx,
		`SELECT id, time_slot_id, visitor_id, exhibitor_id, status, notes, created_at, updated_at
		 FROM appointments
		 WHERE id = $1`,
		id,
	).Scan(
		&appt.ID, &appt.TimeSlotID, &appt.VisitorID, &appt.ExhibitorID,
		&appt.Status, &appt.Notes, &appt.CreatedAt, &appt.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundAppointment, "appointment not found", nil)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to load appointment", err)
	}
	return &appt, nil
}

// Cancel marks an appointment cancelled. Cancelling an already-cancelled
// appointment is a no-op rather than an error.
func (r *AppointmentRepo) Cancel(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE appointments
		 SET status = $1, updated_at = now()
		 WHERE id = $2`,
		types.AppointmentCancelled, id,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to cancel appointment", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundAppointment, "appointment not found", nil)
	}
	return nil
}

// ConfirmedCount performs the direct count query behind the standing quota:
//
//	SELECT COUNT(*) FROM appointments
//	WHERE visitor_id = $1 AND status = 'confirmed'
func (r *AppointmentRepo) ConfirmedCount(ctx context.Context, visitorID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*)
		 FROM appointments
		 WHERE visitor_id = $1
		   AND status = $2`,
		visitorID, types.AppointmentConfirmed,
	).Scan(&count)
	if err != nil {
		return 0, types.NewAppError(types.ErrCodeInternalDB, "failed to count confirmed appointments", err)
	}
	return count, nil
}
