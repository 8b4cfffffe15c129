package database

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/thereayou/planner-collab/internal/models"
)

// CreateGroup stores the group and makes its creator the owner.
func (d *Database) CreateGroup(ctx context.Context, group *models.Group) error {
	return d.Transaction(ctx, func(tx *Database) error {
		if err := tx.db.WithContext(ctx).Create(group).Error; err != nil {
			return translate(err, "group")
		}
		return tx.UpsertMembership(ctx, group.CreatedBy, group.ID, models.RoleOwner)
	})
}

func (d *Database) GetGroup(ctx context.Context, id uint) (*models.Group, error) {
	var group models.Group
	if err := d.db.WithContext(ctx).First(&group, id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("group %d", id))
	}
	return &group, nil
}

func (d *Database) GetMembership(ctx context.Context, userID, groupID uint) (*models.GroupMembership, error) {
	var m models.GroupMembership
	err := d.db.WithContext(ctx).
		Where("user_id = ? AND group_id = ?", userID, groupID).
		First(&m).Error
	if err != nil {
		return nil, translate(err, "membership")
	}
	return &m, nil
}

func (d *Database) IsMember(ctx context.Context, userID, groupID uint) (bool, error) {
	var count int64
	err := d.db.WithContext(ctx).
		Model(&models.GroupMembership{}).
		Where("user_id = ? AND group_id = ?", userID, groupID).
		Count(&count).Error
	return count > 0, err
}

// UpsertMembership inserts the membership unless one already exists for (user, group).
// An existing row keeps its role.
func (d *Database) UpsertMembership(ctx context.Context, userID, groupID uint, role models.Role) error {
	m := models.GroupMembership{UserID: userID, GroupID: groupID, Role: role}
	err := d.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "group_id"}},
			DoNothing: true,
		}).
		Create(&m).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil
	}
	return err
}

func (d *Database) CountMemberships(ctx context.Context, userID, groupID uint) (int64, error) {
	var count int64
	err := d.db.WithContext(ctx).
		Model(&models.GroupMembership{}).
		Where("user_id = ? AND group_id = ?", userID, groupID).
		Count(&count).Error
	return count, err
}

// ListUserGroups returns the groups userID belongs to, oldest first.
func (d *Database) ListUserGroups(ctx context.Context, userID uint) ([]models.Group, error) {
	memberOf := d.db.WithContext(ctx).
		Model(&models.GroupMembership{}).
		Select("group_id").
		Where("user_id = ?", userID)

	var groups []models.Group
	err := d.db.WithContext(ctx).
		Where("id IN (?)", memberOf).
		Order("id ASC").
		Find(&groups).Error
	return groups, err
}

// ListMembers returns the group's memberships in join order.
func (d *Database) ListMembers(ctx context.Context, groupID uint) ([]models.GroupMembership, error) {
	var members []models.GroupMembership
	err := d.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("id ASC").
		Find(&members).Error
	return members, err
}

// RemoveMembership deletes the membership and the user's participation in the group's plans.
func (d *Database) RemoveMembership(ctx context.Context, userID, groupID uint) error {
	return d.Transaction(ctx, func(tx *Database) error {
		res := tx.db.WithContext(ctx).
			Where("user_id = ? AND group_id = ?", userID, groupID).
			Delete(&models.GroupMembership{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return translate(gorm.ErrRecordNotFound, "membership")
		}

		plans := tx.db.WithContext(ctx).Model(&models.GroupPlan{}).Select("id").Where("group_id = ?", groupID)
		return tx.db.WithContext(ctx).
			Where("user_id = ? AND plan_id IN (?)", userID, plans).
			Delete(&models.GroupPlanParticipant{}).Error
	})
}
