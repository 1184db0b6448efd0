package services

import (
	"context"
	"errors"
	"fmt"

	"git.solsynth.dev/hypernet/polls/pkg/internal/database"
	"git.solsynth.dev/hypernet/polls/pkg/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

func NewFlag(ctx context.Context, user *models.Account, pollID string) (models.PollFlag, error) {
	var flag models.PollFlag
	if user == nil {
		return flag, fmt.Errorf("%w: sign in to report polls", ErrAuth)
	}

	var poll models.Poll
	if err := database.C.WithContext(ctx).Where("id = ?", pollID).First(&poll).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return flag, fmt.Errorf("%w: poll does not exist", ErrNotFound)
		}
		return flag, storeFailure(err, "unable to load poll")
	}

	var count int64
	if err := database.C.WithContext(ctx).
		Model(&models.PollFlag{}).
		Where("poll_id = ? AND account_id = ?", poll.ID, user.ID).
		Count(&count).Error; err != nil {
		return flag, storeFailure(err, "unable to check existing flags")
	} else if count > 0 {
		return flag, invalid("you have already reported this poll")
	}

	flag = models.PollFlag{
		PollID:    poll.ID,
		AccountID: user.ID,
	}
	if err := database.C.WithContext(ctx).Create(&flag).Error; database.IsDuplicateKey(err) {
		// Lost the race against a concurrent report from the same account.
		return flag, invalid("you have already reported this poll")
	} else if err != nil {
		return flag, storeFailure(err, "unable to report poll")
	}

	log.Info().Str("poll", poll.ID).Str("account", user.ID).Msg("A poll has been reported.")

	return flag, nil
}

type flagTally struct {
	PollID string
	Count  int64
}

// ListFlaggedPolls returns reported polls with the most reports first.
func ListFlaggedPolls(ctx context.Context, take, offset int) ([]models.FlaggedPoll, error) {
	var tally []flagTally
	if err := database.C.WithContext(ctx).
		Model(&models.PollFlag{}).
		Select("poll_id, COUNT(id) as count").
		Group("poll_id").
		Order("count DESC, poll_id").
		Limit(take).
		Offset(offset).
		Scan(&tally).Error; err != nil {
		return nil, storeFailure(err, "unable to count flags")
	}

	out := make([]models.FlaggedPoll, 0, len(tally))
	if len(tally) == 0 {
		return out, nil
	}

	var polls []models.Poll
	if err := database.C.WithContext(ctx).
		Where("id IN ?", lo.Map(tally, func(item flagTally, _ int) string {
			return item.PollID
		})).
		Find(&polls).Error; err != nil {
		return nil, storeFailure(err, "unable to load flagged polls")
	}
	mapping := lo.SliceToMap(polls, func(item models.Poll) (string, models.Poll) {
		return item.ID, item
	})

	for _, item := range tally {
		if poll, ok := mapping[item.PollID]; ok {
			out = append(out, models.FlaggedPoll{Poll: poll, FlagCount: item.Count})
		}
	}

	return out, nil
}
