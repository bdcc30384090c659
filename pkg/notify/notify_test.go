package notify

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"orangerides_backend/internal/model"
)

func setupSinkTest(t *testing.T) (*gorm.DB, *Sink) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.AdminNotification{}))

	return db, NewSink(db)
}

func TestAppendAndRecent(t *testing.T) {
	_, sink := setupSinkTest(t)

	for i := 1; i <= 3; i++ {
		require.NoError(t, sink.Append(fmt.Sprintf("event %d", i), model.EventNewOwner))
	}

	notifications, err := sink.Recent(10)
	require.NoError(t, err)
	require.Len(t, notifications, 3)

	// Newest first; sqlite timestamps can collide, so check by ID.
	assert.Greater(t, notifications[0].ID, notifications[2].ID)
	assert.False(t, notifications[0].Read)
}

func TestRecentLimit(t *testing.T) {
	_, sink := setupSinkTest(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, sink.Append("event", model.EventLimitWarning))
	}

	notifications, err := sink.Recent(2)
	require.NoError(t, err)
	assert.Len(t, notifications, 2)
}

func TestMarkRead(t *testing.T) {
	db, sink := setupSinkTest(t)

	require.NoError(t, sink.Append("subscription payment failed", model.EventPaymentFailed))

	var notification model.AdminNotification
	require.NoError(t, db.First(&notification).Error)

	require.NoError(t, sink.MarkRead(notification.ID))

	require.NoError(t, db.First(&notification, notification.ID).Error)
	assert.True(t, notification.Read)
}

func TestMarkReadNotFound(t *testing.T) {
	_, sink := setupSinkTest(t)

	err := sink.MarkRead(42)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestMarkAllReadAndUnreadCount(t *testing.T) {
	_, sink := setupSinkTest(t)

	for i := 0; i < 4; i++ {
		require.NoError(t, sink.Append("event", model.EventNewSubscription))
	}

	count, err := sink.UnreadCount()
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)

	require.NoError(t, sink.MarkAllRead())

	count, err = sink.UnreadCount()
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}
