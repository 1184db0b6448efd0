package services

import (
	"context"

	"git.solsynth.dev/hypernet/polls/pkg/internal/database"
	"git.solsynth.dev/hypernet/polls/pkg/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// DeleteAccountPolls purges everything an account owns, including votes other
// people cast on its polls.
func DeleteAccountPolls(ctx context.Context, accountID string) error {
	var polls []models.Poll
	if err := database.C.WithContext(ctx).
		Where("account_id = ?", accountID).
		Select("id").
		Find(&polls).Error; err != nil {
		return storeFailure(err, "unable to list account polls")
	}
	pollIDs := lo.Map(polls, func(item models.Poll, _ int) string {
		return item.ID
	})

	err := database.C.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(pollIDs) > 0 {
			if err := tx.Where("poll_id IN ?", pollIDs).Delete(&models.Vote{}).Error; err != nil {
				return err
			}
			if err := tx.Where("poll_id IN ?", pollIDs).Delete(&models.PollFlag{}).Error; err != nil {
				return err
			}
		}
		for _, model := range database.AutoMaintainRange {
			if err := tx.Where("account_id = ?", accountID).Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return storeFailure(err, "unable to purge account polls")
	}

	for _, id := range pollIDs {
		InvalidatePollViews(id, "")
	}
	InvalidatePollViews("", accountID)

	log.Info().Str("account", accountID).Int("polls", len(pollIDs)).Msg("Purged polls of a deleted account.")
	return nil
}
