package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/thereayou/planner-collab/internal/models"
)

func (d *Database) CreateNotification(ctx context.Context, n *models.Notification) error {
	return d.db.WithContext(ctx).Create(n).Error
}

// ListNotifications returns the user's notifications, newest first.
func (d *Database) ListNotifications(ctx context.Context, userID uint, limit, offset int) ([]models.Notification, error) {
	var notes []models.Notification
	err := d.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&notes).Error
	return notes, err
}

func (d *Database) CountUnreadNotifications(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := d.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// CountInviteNotifications counts notifications that reference the given invite.
func (d *Database) CountInviteNotifications(ctx context.Context, inviteID uint) (int64, error) {
	var count int64
	err := d.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("invite_id = ?", inviteID).
		Count(&count).Error
	return count, err
}

// MarkNotificationRead only touches rows owned by userID; anything else is reported as missing.
func (d *Database) MarkNotificationRead(ctx context.Context, id, userID uint) error {
	res := d.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, fmt.Sprintf("notification %d", id))
	}
	return nil
}

func (d *Database) DeleteNotification(ctx context.Context, id, userID uint) error {
	res := d.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Notification{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, fmt.Sprintf("notification %d", id))
	}
	return nil
}
