package db

import (
	"context"
	"testing"
	"time"

	"fotobook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleAppointment(userID int64, day, slot string) *models.Appointment {
	date, _ := time.Parse("2006-01-02", day)
	return &models.Appointment{
		UserID:           userID,
		UserName:         "Тест Клиент",
		PhotographerID:   "anna",
		PhotographerName: "Анна Петрова",
		Date:             date,
		TimeSlot:         slot,
		Status:           models.StatusNew,
		CreatedAt:        time.Now().UTC(),
	}
}

func TestAddAppointmentSequentialIDs(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		id, err := db.AddAppointment(ctx, sampleAppointment(100, "2025-03-10", "14:00"))
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}
}

func TestAppointmentRoundTrip(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	id, err := db.AddAppointment(ctx, sampleAppointment(100, "2025-03-10", "14:00"))
	require.NoError(t, err)

	got, err := db.AppointmentByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, int64(100), got.UserID)
	assert.Equal(t, "anna", got.PhotographerID)
	assert.Equal(t, "2025-03-10", got.DateText())
	assert.Equal(t, "14:00", got.TimeSlot)
	assert.Equal(t, models.StatusNew, got.Status)
}

func TestAppointmentByIDNotFound(t *testing.T) {
	db := testDB(t)
	_, err := db.AppointmentByID(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAppointmentsByUser(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	// Insert out of calendar order for two users.
	_, err := db.AddAppointment(ctx, sampleAppointment(1, "2025-04-01", "18:00"))
	require.NoError(t, err)
	_, err = db.AddAppointment(ctx, sampleAppointment(1, "2025-03-10", "14:00"))
	require.NoError(t, err)
	_, err = db.AddAppointment(ctx, sampleAppointment(2, "2025-03-01", "10:00"))
	require.NoError(t, err)
	_, err = db.AddAppointment(ctx, sampleAppointment(1, "2025-03-10", "10:00"))
	require.NoError(t, err)

	got, err := db.AppointmentsByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "2025-03-10", got[0].DateText())
	assert.Equal(t, "10:00", got[0].TimeSlot)
	assert.Equal(t, "14:00", got[1].TimeSlot)
	assert.Equal(t, "2025-04-01", got[2].DateText())

	all, err := db.AllAppointments(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestUpdateAppointmentStatus(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	id, err := db.AddAppointment(ctx, sampleAppointment(1, "2025-03-10", "14:00"))
	require.NoError(t, err)

	require.NoError(t, db.UpdateAppointmentStatus(ctx, id, models.StatusConfirmed))

	got, err := db.AppointmentByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, got.Status)

	// A second decision hits the terminal-status guard and changes nothing.
	err = db.UpdateAppointmentStatus(ctx, id, models.StatusCancelled)
	assert.ErrorIs(t, err, ErrAlreadyFinalized)

	got, err = db.AppointmentByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, got.Status)
}

func TestUpdateAppointmentStatusCancelIsAlsoFinal(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	id, err := db.AddAppointment(ctx, sampleAppointment(1, "2025-03-10", "14:00"))
	require.NoError(t, err)

	require.NoError(t, db.UpdateAppointmentStatus(ctx, id, models.StatusCancelled))
	err = db.UpdateAppointmentStatus(ctx, id, models.StatusConfirmed)
	assert.ErrorIs(t, err, ErrAlreadyFinalized)
}

func TestUpdateAppointmentStatusMissing(t *testing.T) {
	db := testDB(t)
	err := db.UpdateAppointmentStatus(context.Background(), 404, models.StatusConfirmed)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateAppointmentStatusRejectsNonTerminal(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	id, err := db.AddAppointment(ctx, sampleAppointment(1, "2025-03-10", "14:00"))
	require.NoError(t, err)

	assert.Error(t, db.UpdateAppointmentStatus(ctx, id, models.StatusNew))
	assert.Error(t, db.UpdateAppointmentStatus(ctx, id, models.Status("done")))
}
