package services

import (
	"context"
	"errors"
	"fmt"

	"git.solsynth.dev/hypernet/polls/pkg/internal/database"
	"git.solsynth.dev/hypernet/polls/pkg/internal/models"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubmitVote accepts anonymous votes when user is nil.
// Repeat votes are allowed unless polls.unique_votes is enabled.
func SubmitVote(ctx context.Context, user *models.Account, pollID string, optionIndex int) (models.Vote, error) {
	var vote models.Vote
	unique := user != nil && GetPollLimits().UniqueVotes

	err := database.C.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Where("id = ?", pollID)
		if unique {
			// Serializes voters of the same poll until the check below commits.
			query = query.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var poll models.Poll
		if err := query.First(&poll).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return invalid("poll does not exist")
			}
			return storeFailure(err, "unable to load poll")
		}

		if optionIndex < 0 || optionIndex >= len(poll.Options) {
			return invalid("poll does not have option #%d", optionIndex)
		}

		vote = models.Vote{
			PollID:      poll.ID,
			OptionIndex: optionIndex,
		}
		if user != nil {
			vote.AccountID = &user.ID
		}

		if unique {
			var count int64
			if err := tx.Model(&models.Vote{}).
				Where("poll_id = ? AND account_id = ?", poll.ID, user.ID).
				Count(&count).Error; err != nil {
				return storeFailure(err, "unable to check existing votes")
			}
			if count > 0 {
				return invalid("you have already voted on this poll")
			}
		}

		if err := tx.Create(&vote).Error; err != nil {
			return storeFailure(err, "unable to record vote")
		}
		return nil
	})
	if err != nil {
		return vote, err
	}

	log.Debug().Str("poll", pollID).Int("option", optionIndex).Bool("anonymous", user == nil).Msg("A vote has been recorded.")

	return vote, nil
}

func ListMyVotes(ctx context.Context, user *models.Account, pollID string) ([]models.Vote, error) {
	if user == nil {
		return nil, fmt.Errorf("%w: sign in to view your votes", ErrAuth)
	}

	votes := make([]models.Vote, 0)
	if err := database.C.WithContext(ctx).
		Where("poll_id = ? AND account_id = ?", pollID, user.ID).
		Order("created_at DESC").
		Find(&votes).Error; err != nil {
		return nil, storeFailure(err, "unable to list votes")
	}

	return votes, nil
}

// GetPollMetric tallies the votes on read. Votes pointing past the current
// option list, left over from an edit that removed options, are not counted.
func GetPollMetric(ctx context.Context, poll models.Poll) (models.PollMetric, error) {
	metric := models.PollMetric{
		ByOptions:           make([]int64, len(poll.Options)),
		ByOptionsPercentage: make([]float64, len(poll.Options)),
	}

	var tally []struct {
		OptionIndex int
		Count       int64
	}
	if err := database.C.WithContext(ctx).
		Model(&models.Vote{}).
		Select("option_index, COUNT(id) as count").
		Where("poll_id = ?", poll.ID).
		Group("option_index").
		Scan(&tally).Error; err != nil {
		return metric, storeFailure(err, "unable to count votes")
	}

	for _, item := range tally {
		if item.OptionIndex < 0 || item.OptionIndex >= len(poll.Options) {
			continue
		}
		metric.ByOptions[item.OptionIndex] = item.Count
		metric.TotalVotes += item.Count
	}

	if metric.TotalVotes > 0 {
		for idx, count := range metric.ByOptions {
			metric.ByOptionsPercentage[idx] = float64(count) / float64(metric.TotalVotes)
		}
	}

	return metric, nil
}
