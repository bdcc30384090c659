package notify

import (
	"orangerides_backend/internal/model"

	"gorm.io/gorm"
)

// Sink collects system-generated events for the admin inbox. Writes are
// best-effort; callers log failures and move on.
type Sink struct {
	db *gorm.DB
}

func NewSink(db *gorm.DB) *Sink {
	return &Sink{db: db}
}

func (s *Sink) Append(message string, eventType model.NotificationEvent) error {
	notification := model.AdminNotification{
		Message:   message,
		EventType: eventType,
	}
	return s.db.Create(&notification).Error
}

func (s *Sink) MarkRead(id uint) error {
	result := s.db.Model(&model.AdminNotification{}).
		Where("id = ?", id).
		Update("read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *Sink) MarkAllRead() error {
	return s.db.Model(&model.AdminNotification{}).
		Where("read = ?", false).
		Update("read", true).Error
}

// Recent returns notifications newest first.
func (s *Sink) Recent(limit int) ([]model.AdminNotification, error) {
	var notifications []model.AdminNotification
	query := s.db.Order("created_at desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&notifications).Error
	return notifications, err
}

func (s *Sink) UnreadCount() (int64, error) {
	var count int64
	err := s.db.Model(&model.AdminNotification{}).
		Where("read = ?", false).
		Count(&count).Error
	return count, err
}
