package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fotobook/internal/models"
)

var (
	// ErrNotFound is returned on a lookup miss.
	ErrNotFound = errors.New("appointment not found")

	// ErrAlreadyFinalized is returned when a status change targets an
	// appointment whose status is already terminal.
	ErrAlreadyFinalized = errors.New("appointment already finalized")
)

const dateLayout = "2006-01-02"

// AddAppointment persists a new appointment and returns its id. Ids are
// sequential and never reused; the insert is a single statement so
// concurrent appends from different users cannot collide.
func (db *DB) AddAppointment(ctx context.Context, a *models.Appointment) (int64, error) {
	res, err := db.ExecContext(ctx,
		`INSERT INTO appointments (user_id, user_name, photographer_id, photographer_name, date, time_slot, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.UserID, a.UserName, a.PhotographerID, a.PhotographerName,
		a.Date.Format(dateLayout), a.TimeSlot, string(models.StatusNew), a.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert appointment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("appointment id: %w", err)
	}
	return id, nil
}

// AppointmentsByUser returns the user's appointments ordered by date.
func (db *DB) AppointmentsByUser(ctx context.Context, userID int64) ([]models.Appointment, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, user_id, user_name, photographer_id, photographer_name, date, time_slot, status, created_at
		FROM appointments WHERE user_id = ? ORDER BY date, time_slot`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAppointments(rows)
}

// AllAppointments returns every appointment ordered by date.
func (db *DB) AllAppointments(ctx context.Context) ([]models.Appointment, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, user_id, user_name, photographer_id, photographer_name, date, time_slot, status, created_at
		FROM appointments ORDER BY date, time_slot`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAppointments(rows)
}

// AppointmentsByDate returns the appointments of one calendar day ordered
// by slot.
func (db *DB) AppointmentsByDate(ctx context.Context, day time.Time) ([]models.Appointment, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, user_id, user_name, photographer_id, photographer_name, date, time_slot, status, created_at
		FROM appointments WHERE date = ? ORDER BY time_slot`,
		day.Format(dateLayout),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAppointments(rows)
}

// AppointmentByID returns one appointment or ErrNotFound.
func (db *DB) AppointmentByID(ctx context.Context, id int64) (*models.Appointment, error) {
	row := db.QueryRowContext(ctx,
		`SELECT id, user_id, user_name, photographer_id, photographer_name, date, time_slot, status, created_at
		FROM appointments WHERE id = ?`,
		id,
	)
	a, err := scanAppointment(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// UpdateAppointmentStatus moves an appointment from `new` to a terminal
// status. The guard is part of the UPDATE itself, so a concurrent second
// decision cannot slip through.
func (db *DB) UpdateAppointmentStatus(ctx context.Context, id int64, status models.Status) error {
	if !status.Valid() || !status.Final() {
		return fmt.Errorf("invalid target status %q", status)
	}
	res, err := db.ExecContext(ctx,
		`UPDATE appointments SET status = ? WHERE id = ? AND status = ?`,
		string(status), id, string(models.StatusNew),
	)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}
	// Distinguish a missing record from a finalized one.
	var count int
	if err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM appointments WHERE id = ?", id,
	).Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrAlreadyFinalized
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAppointment(row rowScanner) (*models.Appointment, error) {
	var a models.Appointment
	var date string
	var status string
	if err := row.Scan(&a.ID, &a.UserID, &a.UserName, &a.PhotographerID, &a.PhotographerName,
		&date, &a.TimeSlot, &status, &a.CreatedAt); err != nil {
		return nil, err
	}
	parsed, err := time.Parse(dateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("parse appointment date %q: %w", date, err)
	}
	a.Date = parsed
	a.Status = models.Status(status)
	return &a, nil
}

func scanAppointments(rows *sql.Rows) ([]models.Appointment, error) {
	var out []models.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}
