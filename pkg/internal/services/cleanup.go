package services

import (
	"time"

	"git.solsynth.dev/hypernet/polls/pkg/internal/database"
	"git.solsynth.dev/hypernet/polls/pkg/internal/models"
	"github.com/rs/zerolog/log"
)

func DoAutoDatabaseCleanup() {
	log.Debug().Time("now", time.Now()).Msg("Now cleaning up entire database...")

	var count int64

	tx := database.C.
		Where("poll_id NOT IN (?)", database.C.Model(&models.Poll{}).Select("id")).
		Delete(&models.Vote{})
	if tx.Error != nil {
		log.Error().Err(tx.Error).Msg("An error occurred when cleaning orphan votes...")
	} else {
		count += tx.RowsAffected
	}

	tx = database.C.
		Where("poll_id NOT IN (?)", database.C.Model(&models.Poll{}).Select("id")).
		Delete(&models.PollFlag{})
	if tx.Error != nil {
		log.Error().Err(tx.Error).Msg("An error occurred when cleaning orphan flags...")
	} else {
		count += tx.RowsAffected
	}

	tx = database.C.Where("expired_at < ?", time.Now()).Delete(&models.Session{})
	if tx.Error != nil {
		log.Error().Err(tx.Error).Msg("An error occurred when cleaning expired sessions...")
	} else {
		count += tx.RowsAffected
	}

	log.Debug().Int64("affected", count).Msg("Clean up entire database accomplished.")
}
