package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/kursadbilgin/outreach-engine/internal/repository"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "000001_create_schedules",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&repository.ScheduleModel{}, &repository.ScheduleStepModel{}); err != nil {
					return err
				}
				return tx.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_schedule_steps_number ON schedule_steps (schedule_id, attempt_number)`).Error
			},
			Rollback: func(tx *gorm.DB) error {
				if err := tx.Migrator().DropTable(&repository.ScheduleStepModel{}); err != nil {
					return err
				}
				return tx.Migrator().DropTable(&repository.ScheduleModel{})
			},
		},
		{
			ID: "000002_create_attempts",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&repository.AttemptModel{}); err != nil {
					return err
				}
				indexes := []string{
					`CREATE INDEX IF NOT EXISTS idx_attempts_due ON outreach_attempts (scheduled_for) WHERE status = 'SCHEDULED'`,
					`CREATE INDEX IF NOT EXISTS idx_attempts_schedule_contact ON outreach_attempts (schedule_id, contact_id)`,
					`CREATE INDEX IF NOT EXISTS idx_attempts_status ON outreach_attempts (status)`,
				}
				for _, sql := range indexes {
					if err := tx.Exec(sql).Error; err != nil {
						return err
					}
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&repository.AttemptModel{})
			},
		},
		{
			ID: "000003_create_activity_events",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&repository.ActivityEventModel{}); err != nil {
					return err
				}
				return tx.Exec(`CREATE INDEX IF NOT EXISTS idx_activity_type_created ON activity_events (event_type, created_at)`).Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&repository.ActivityEventModel{})
			},
		},
		{
			ID: "000004_create_contacts_conversations",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&repository.ContactModel{}, &repository.ConversationModel{})
			},
			Rollback: func(tx *gorm.DB) error {
				if err := tx.Migrator().DropTable(&repository.ConversationModel{}); err != nil {
					return err
				}
				return tx.Migrator().DropTable(&repository.ContactModel{})
			},
		},
	})

	return m.Migrate()
}
