package database

import (
	"git.solsynth.dev/hypernet/polls/pkg/internal/models"
	"gorm.io/gorm"
)

// AutoMaintainRange lists the records owned by an account.
// They are purged together when the account is removed.
var AutoMaintainRange = []any{
	&models.Poll{},
	&models.Vote{},
	&models.PollFlag{},
}

func RunMigration(source *gorm.DB) error {
	if err := source.AutoMigrate(
		append(
			AutoMaintainRange,
			&models.Account{},
			&models.Session{},
		)...,
	); err != nil {
		return err
	}

	return nil
}
