package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/thereayou/planner-collab/internal/apperr"
	"github.com/thereayou/planner-collab/internal/models"
)

func (d *Database) CreateGroupPlan(ctx context.Context, plan *models.GroupPlan) error {
	return d.db.WithContext(ctx).Create(plan).Error
}

func (d *Database) GetGroupPlan(ctx context.Context, id uint) (*models.GroupPlan, error) {
	var plan models.GroupPlan
	if err := d.db.WithContext(ctx).First(&plan, id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("plan %d", id))
	}
	return &plan, nil
}

func (d *Database) UpdateGroupPlan(ctx context.Context, plan *models.GroupPlan) error {
	return d.db.WithContext(ctx).Save(plan).Error
}

// ListGroupPlans returns a group's plans, newest first.
func (d *Database) ListGroupPlans(ctx context.Context, groupID uint, limit, offset int) ([]models.GroupPlan, error) {
	var plans []models.GroupPlan
	err := d.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&plans).Error
	return plans, err
}

// DeleteGroupPlan removes the plan together with its participants.
func (d *Database) DeleteGroupPlan(ctx context.Context, id uint) error {
	return d.Transaction(ctx, func(tx *Database) error {
		if err := tx.db.WithContext(ctx).Where("plan_id = ?", id).Delete(&models.GroupPlanParticipant{}).Error; err != nil {
			return err
		}
		res := tx.db.WithContext(ctx).Delete(&models.GroupPlan{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return translate(gorm.ErrRecordNotFound, fmt.Sprintf("plan %d", id))
		}
		return nil
	})
}

// AddPlanParticipant records userID on the plan. joined is false when it was already there.
func (d *Database) AddPlanParticipant(ctx context.Context, planID, userID uint) (joined bool, err error) {
	p := models.GroupPlanParticipant{PlanID: planID, UserID: userID}
	res := d.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "plan_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&p)
	if res.Error != nil {
		return false, translate(res.Error, "participant")
	}
	return res.RowsAffected > 0, nil
}

// RemovePlanParticipant fails with Invalid when userID was not taking part.
func (d *Database) RemovePlanParticipant(ctx context.Context, planID, userID uint) error {
	res := d.db.WithContext(ctx).
		Where("plan_id = ? AND user_id = ?", planID, userID).
		Delete(&models.GroupPlanParticipant{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: not a participant of plan %d", apperr.ErrInvalid, planID)
	}
	return nil
}

// ListPlanParticipants returns participants in join order.
func (d *Database) ListPlanParticipants(ctx context.Context, planID uint) ([]models.GroupPlanParticipant, error) {
	var parts []models.GroupPlanParticipant
	err := d.db.WithContext(ctx).
		Where("plan_id = ?", planID).
		Order("joined_at ASC, id ASC").
		Find(&parts).Error
	return parts, err
}
