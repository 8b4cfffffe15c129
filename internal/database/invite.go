package database

import (
	"context"
	"fmt"

	"github.com/thereayou/planner-collab/internal/models"
)

func (d *Database) CreateInvite(ctx context.Context, invite *models.GroupInvite) error {
	return translate(d.db.WithContext(ctx).Create(invite).Error, "pending invite")
}

func (d *Database) GetInvite(ctx context.Context, id uint) (*models.GroupInvite, error) {
	var invite models.GroupInvite
	if err := d.db.WithContext(ctx).First(&invite, id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("invite %d", id))
	}
	return &invite, nil
}

func (d *Database) HasPendingInvite(ctx context.Context, inviteeID, groupID uint) (bool, error) {
	var count int64
	err := d.db.WithContext(ctx).
		Model(&models.GroupInvite{}).
		Where("invitee_id = ? AND group_id = ? AND status = ?", inviteeID, groupID, models.InvitePending).
		Count(&count).Error
	return count > 0, err
}

// ResolveInvite moves a pending invite to status. It reports false when the
// invite was no longer pending, which is how concurrent responders lose the race.
func (d *Database) ResolveInvite(ctx context.Context, id uint, status models.InviteStatus) (bool, error) {
	res := d.db.WithContext(ctx).
		Model(&models.GroupInvite{}).
		Where("id = ? AND status = ?", id, models.InvitePending).
		Update("status", status)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// PendingInvites lists invites waiting on the user, oldest first.
func (d *Database) PendingInvites(ctx context.Context, inviteeID uint) ([]models.GroupInvite, error) {
	var invites []models.GroupInvite
	err := d.db.WithContext(ctx).
		Where("invitee_id = ? AND status = ?", inviteeID, models.InvitePending).
		Order("created_at ASC").
		Order("id ASC").
		Find(&invites).Error
	return invites, err
}
