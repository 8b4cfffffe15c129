package database

import (
	"context"
	"fmt"

	"github.com/thereayou/planner-collab/internal/models"
)

func (d *Database) SaveUser(ctx context.Context, user *models.User) error {
	return translate(d.db.WithContext(ctx).Create(user).Error, "user")
}

func (d *Database) GetUser(ctx context.Context, id uint) (*models.User, error) {
	user := models.User{}
	if err := d.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("user %d", id))
	}
	return &user, nil
}

func (d *Database) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := models.User{}
	if err := d.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &user, nil
}

// FindUserByIdentifier resolves an exact email or full name. When several users
// share a full name the oldest account wins.
func (d *Database) FindUserByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	user := models.User{}
	err := d.db.WithContext(ctx).
		Where("email = ? OR full_name = ?", identifier, identifier).
		Order("id ASC").
		First(&user).Error
	if err != nil {
		return nil, translate(err, fmt.Sprintf("user %q", identifier))
	}
	return &user, nil
}

// GetUsers loads the users with the given ids; unknown ids are skipped.
func (d *Database) GetUsers(ctx context.Context, ids []uint) ([]models.User, error) {
	var users []models.User
	if len(ids) == 0 {
		return users, nil
	}
	err := d.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	return users, err
}
