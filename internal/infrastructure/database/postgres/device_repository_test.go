package postgres

import (
	"context"
	"testing"
	"time"

	domainDevice "device-checkout/internal/domain/device"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	// A single connection keeps every query on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)

	db := &DB{DB: gormDB}
	require.NoError(t, db.Migrate())

	return db
}

func newPoolDevice(registeredBy uuid.UUID, at time.Time) *domainDevice.Device {
	return &domainDevice.Device{
		Model:        "ThinkPad X1",
		OS:           "Linux",
		Manufacturer: "Lenovo",
		RegisteredBy: registeredBy,
		RegisteredAt: at,
	}
}

func TestDeviceRepository_CreateEnforcesCapacity(t *testing.T) {
	repo := NewDeviceRepository(newTestDB(t))
	ctx := context.Background()
	owner := uuid.New()

	for i := 0; i < 10; i++ {
		err := repo.Create(ctx, newPoolDevice(owner, time.Now()), 10)
		require.NoError(t, err)
	}

	err := repo.Create(ctx, newPoolDevice(owner, time.Now()), 10)
	assert.ErrorIs(t, err, domainDevice.ErrPoolCapacityReached)

	count, err := repo.CountDevices(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 10, count)
}

func TestDeviceRepository_ListReturnsRegistrationOrder(t *testing.T) {
	repo := NewDeviceRepository(newTestDB(t))
	ctx := context.Background()
	owner := uuid.New()

	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	var ids []uuid.UUID
	for i := 0; i < 4; i++ {
		d := newPoolDevice(owner, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, repo.Create(ctx, d, 10))
		ids = append(ids, d.ID)
	}

	devices, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, devices, 4)
	for i, d := range devices {
		assert.Equal(t, ids[i], d.ID)
	}
}

func TestDeviceRepository_MarkCheckedOutIsConditional(t *testing.T) {
	repo := NewDeviceRepository(newTestDB(t))
	ctx := context.Background()

	d := newPoolDevice(uuid.New(), time.Now())
	require.NoError(t, repo.Create(ctx, d, 10))

	holder := uuid.New()
	now := time.Now()
	require.NoError(t, repo.MarkCheckedOut(ctx, d.ID, holder, now))

	// Second conditional write loses: the row is no longer in the expected state.
	err := repo.MarkCheckedOut(ctx, d.ID, uuid.New(), now)
	assert.ErrorIs(t, err, domainDevice.ErrAlreadyCheckedOut)

	// Missing device is reported as such, not as a state conflict.
	err = repo.MarkCheckedOut(ctx, uuid.New(), holder, now)
	assert.ErrorIs(t, err, domainDevice.ErrDeviceNotFound)

	got, err := repo.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.True(t, got.IsCheckedOut)
	require.NotNil(t, got.LastCheckedOutBy)
	assert.Equal(t, holder, *got.LastCheckedOutBy)
	assert.NotNil(t, got.LastCheckedOutAt)
}

func TestDeviceRepository_MarkCheckedInKeepsHolderHistory(t *testing.T) {
	repo := NewDeviceRepository(newTestDB(t))
	ctx := context.Background()

	d := newPoolDevice(uuid.New(), time.Now())
	require.NoError(t, repo.Create(ctx, d, 10))

	err := repo.MarkCheckedIn(ctx, d.ID, time.Now())
	assert.ErrorIs(t, err, domainDevice.ErrNotCheckedOut)

	holder := uuid.New()
	require.NoError(t, repo.MarkCheckedOut(ctx, d.ID, holder, time.Now()))
	require.NoError(t, repo.MarkCheckedIn(ctx, d.ID, time.Now()))

	got, err := repo.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.False(t, got.IsCheckedOut)
	require.NotNil(t, got.LastCheckedOutBy)
	assert.Equal(t, holder, *got.LastCheckedOutBy)
	assert.NotNil(t, got.LastCheckedInAt)
}

func TestDeviceRepository_FindHeldBy(t *testing.T) {
	repo := NewDeviceRepository(newTestDB(t))
	ctx := context.Background()
	holder := uuid.New()

	first := newPoolDevice(uuid.New(), time.Now())
	second := newPoolDevice(uuid.New(), time.Now())
	require.NoError(t, repo.Create(ctx, first, 10))
	require.NoError(t, repo.Create(ctx, second, 10))

	_, err := repo.FindHeldBy(ctx, holder)
	assert.ErrorIs(t, err, domainDevice.ErrDeviceNotFound)

	require.NoError(t, repo.MarkCheckedOut(ctx, first.ID, holder, time.Now()))

	held, err := repo.FindHeldBy(ctx, holder)
	require.NoError(t, err)
	assert.Equal(t, first.ID, held.ID)

	// After check-in the retained holder history must not count as holding.
	require.NoError(t, repo.MarkCheckedIn(ctx, first.ID, time.Now()))
	_, err = repo.FindHeldBy(ctx, holder)
	assert.ErrorIs(t, err, domainDevice.ErrDeviceNotFound)
}

func TestDeviceRepository_FeedbackLedger(t *testing.T) {
	repo := NewDeviceRepository(newTestDB(t))
	ctx := context.Background()

	d := newPoolDevice(uuid.New(), time.Now())
	require.NoError(t, repo.Create(ctx, d, 10))

	reviewerA := uuid.New()
	reviewerB := uuid.New()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.AddFeedback(ctx, &domainDevice.Feedback{
		DeviceID: d.ID, ReviewerID: reviewerA, ReviewerName: "alice",
		Rating: 7, Comment: "solid battery", CreatedAt: base,
	}))
	require.NoError(t, repo.AddFeedback(ctx, &domainDevice.Feedback{
		DeviceID: d.ID, ReviewerID: reviewerB, ReviewerName: "bob",
		Rating: 4, Comment: "sticky keys", CreatedAt: base.Add(time.Minute),
	}))

	// One entry per reviewer per device.
	err := repo.AddFeedback(ctx, &domainDevice.Feedback{
		DeviceID: d.ID, ReviewerID: reviewerA, ReviewerName: "alice",
		Rating: 9, CreatedAt: base.Add(2 * time.Minute),
	})
	assert.ErrorIs(t, err, domainDevice.ErrDuplicateFeedback)

	entries, err := repo.ListFeedback(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, reviewerB, entries[0].ReviewerID)
	assert.Equal(t, reviewerA, entries[1].ReviewerID)

	require.NoError(t, repo.RemoveFeedback(ctx, d.ID, reviewerB))
	err = repo.RemoveFeedback(ctx, d.ID, reviewerB)
	assert.ErrorIs(t, err, domainDevice.ErrFeedbackNotFound)

	entries, err = repo.ListFeedback(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "alice", entries[0].ReviewerName)
}

func TestDeviceRepository_FeedbackRequiresDevice(t *testing.T) {
	repo := NewDeviceRepository(newTestDB(t))
	ctx := context.Background()

	err := repo.AddFeedback(ctx, &domainDevice.Feedback{
		DeviceID: uuid.New(), ReviewerID: uuid.New(), ReviewerName: "ghost",
		Rating: 5, CreatedAt: time.Now(),
	})
	assert.ErrorIs(t, err, domainDevice.ErrDeviceNotFound)

	err = repo.RemoveFeedback(ctx, uuid.New(), uuid.New())
	assert.ErrorIs(t, err, domainDevice.ErrDeviceNotFound)

	_, err = repo.ListFeedback(ctx, uuid.New())
	assert.ErrorIs(t, err, domainDevice.ErrDeviceNotFound)
}

func TestDeviceRepository_DeleteRemovesLedger(t *testing.T) {
	db := newTestDB(t)
	repo := NewDeviceRepository(db)
	ctx := context.Background()

	d := newPoolDevice(uuid.New(), time.Now())
	require.NoError(t, repo.Create(ctx, d, 10))
	require.NoError(t, repo.AddFeedback(ctx, &domainDevice.Feedback{
		DeviceID: d.ID, ReviewerID: uuid.New(), ReviewerName: "alice",
		Rating: 6, CreatedAt: time.Now(),
	}))

	require.NoError(t, repo.Delete(ctx, d.ID))

	_, err := repo.GetByID(ctx, d.ID)
	assert.ErrorIs(t, err, domainDevice.ErrDeviceNotFound)

	var orphans int64
	require.NoError(t, db.DB.Table("device_feedback").Count(&orphans).Error)
	assert.Zero(t, orphans)

	assert.ErrorIs(t, repo.Delete(ctx, d.ID), domainDevice.ErrDeviceNotFound)
}
