package database

import (
	"errors"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/thereayou/planner-collab/internal/models"
)

const pendingInviteIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_group_invites_pending
	ON group_invites (invitee_id, group_id) WHERE status = 'pending'`

func (d *Database) Connect(dsn string) error {
	if dsn == "" {
		return errors.New("DATABASE_URL is not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return err
	}

	if err := Migrate(db); err != nil {
		return err
	}

	d.db = db

	return nil
}

// Migrate creates the schema. It is shared by the Postgres connection and the SQLite test store.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.GroupMembership{},
		&models.GroupInvite{},
		&models.Notification{},
		&models.GroupPlan{},
		&models.GroupPlanParticipant{},
	)
	if err != nil {
		return err
	}

	// at most one pending invite per (invitee, group)
	return db.Exec(pendingInviteIndex).Error
}
