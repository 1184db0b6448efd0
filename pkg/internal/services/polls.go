package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"git.solsynth.dev/hypernet/polls/pkg/internal/database"
	"git.solsynth.dev/hypernet/polls/pkg/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// NormalizePollInput trims the question and options and drops blank options.
func NormalizePollInput(question string, options []string) (string, []string, error) {
	limits := GetPollLimits()

	question = strings.TrimSpace(question)
	if len(question) == 0 {
		return question, nil, invalid("question is required")
	}
	if len([]rune(question)) > limits.MaxQuestionLength {
		return question, nil, invalid("question must be at most %d characters", limits.MaxQuestionLength)
	}

	options = lo.Filter(
		lo.Map(options, func(item string, _ int) string {
			return strings.TrimSpace(item)
		}),
		func(item string, _ int) bool {
			return len(item) > 0
		},
	)
	if len(options) < 2 {
		return question, options, invalid("poll needs at least two options")
	}
	if len(options) > limits.MaxOptions {
		return question, options, invalid("poll can have at most %d options", limits.MaxOptions)
	}
	for idx, option := range options {
		if len([]rune(option)) > limits.MaxOptionLength {
			return question, options, invalid("option #%d must be at most %d characters", idx+1, limits.MaxOptionLength)
		}
	}

	return question, options, nil
}

func NewPoll(ctx context.Context, user *models.Account, question string, options []string) (models.Poll, error) {
	var poll models.Poll
	if user == nil {
		return poll, fmt.Errorf("%w: sign in to create polls", ErrAuth)
	}

	question, options, err := NormalizePollInput(question, options)
	if err != nil {
		return poll, err
	}

	poll = models.Poll{
		Question:  question,
		Options:   options,
		Language:  DetectLanguage(question),
		AccountID: user.ID,
	}

	if err := database.C.WithContext(ctx).Create(&poll).Error; err != nil {
		return poll, storeFailure(err, "unable to create poll")
	}

	InvalidatePollViews("", user.ID)
	log.Info().Str("poll", poll.ID).Str("account", user.ID).Msg("A poll has been created.")

	return poll, nil
}

func ListPollsByOwner(ctx context.Context, user *models.Account) ([]models.Poll, error) {
	if user == nil {
		return nil, fmt.Errorf("%w: sign in to list your polls", ErrAuth)
	}

	cacheKey := GetOwnedPollsCacheKey(user.ID)
	if polls, ok := getCachedView[[]models.Poll](cacheKey); ok {
		return polls, nil
	}
	generation := viewGeneration(cacheKey)

	polls := make([]models.Poll, 0)
	if err := database.C.WithContext(ctx).
		Where("account_id = ?", user.ID).
		Order("created_at DESC").
		Find(&polls).Error; err != nil {
		return nil, storeFailure(err, "unable to list polls")
	}

	setCachedView(cacheKey, polls, generation)

	return polls, nil
}

// GetPoll is public so poll links can be shared with anyone.
// Storage failures are reported as not found as well.
func GetPoll(ctx context.Context, id string) (models.Poll, error) {
	cacheKey := GetPollCacheKey(id)
	if poll, ok := getCachedView[models.Poll](cacheKey); ok {
		return poll, nil
	}
	generation := viewGeneration(cacheKey)

	var poll models.Poll
	if err := database.C.WithContext(ctx).Where("id = ?", id).First(&poll).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Error().Err(err).Str("poll", id).Msg("An error occurred when loading poll...")
		}
		return poll, fmt.Errorf("%w: poll does not exist", ErrNotFound)
	}

	setCachedView(cacheKey, poll, generation)

	return poll, nil
}

// getOwnedPoll reads the poll straight from the database, the cache is never
// trusted for authorization.
func getOwnedPoll(ctx context.Context, user *models.Account, id string, allowAdmin bool) (models.Poll, error) {
	var poll models.Poll
	if err := database.C.WithContext(ctx).Where("id = ?", id).First(&poll).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return poll, fmt.Errorf("%w: poll does not exist", ErrNotFound)
		}
		return poll, storeFailure(err, "unable to load poll")
	}

	if poll.AccountID != user.ID && !(allowAdmin && user.IsAdmin) {
		log.Warn().
			Str("poll", poll.ID).
			Str("owner", poll.AccountID).
			Str("account", user.ID).
			Msg("Rejected a poll mutation from non-owner.")
		return poll, fmt.Errorf("%w: you are not the owner of this poll", ErrAuth)
	}

	return poll, nil
}

func UpdatePoll(ctx context.Context, user *models.Account, id string, question string, options []string) (models.Poll, error) {
	var poll models.Poll
	if user == nil {
		return poll, fmt.Errorf("%w: sign in to edit polls", ErrAuth)
	}

	question, options, err := NormalizePollInput(question, options)
	if err != nil {
		return poll, err
	}

	if poll, err = getOwnedPoll(ctx, user, id, false); err != nil {
		return poll, err
	}

	poll.Question = question
	poll.Options = options
	poll.Language = DetectLanguage(question)

	tx := database.C.WithContext(ctx).
		Model(&models.Poll{}).
		Where("id = ? AND account_id = ?", poll.ID, user.ID).
		Updates(map[string]any{
			"question": poll.Question,
			"options":  poll.Options,
			"language": poll.Language,
		})
	if tx.Error != nil {
		return poll, storeFailure(tx.Error, "unable to update poll")
	} else if tx.RowsAffected == 0 {
		return poll, fmt.Errorf("%w: you are not the owner of this poll", ErrAuth)
	}

	InvalidatePollViews(poll.ID, poll.AccountID)

	return poll, nil
}

func DeletePoll(ctx context.Context, user *models.Account, id string) error {
	if user == nil {
		return fmt.Errorf("%w: sign in to delete polls", ErrAuth)
	}

	poll, err := getOwnedPoll(ctx, user, id, false)
	if err != nil {
		return err
	}

	return deletePollWithVotes(ctx, poll, &user.ID)
}

// DeletePollAsAdmin relies on the admin flag loaded from the accounts table.
func DeletePollAsAdmin(ctx context.Context, user *models.Account, id string) error {
	if user == nil || !user.IsAdmin {
		return fmt.Errorf("%w: administrator privilege required", ErrAuth)
	}

	poll, err := getOwnedPoll(ctx, user, id, true)
	if err != nil {
		return err
	}

	if err := deletePollWithVotes(ctx, poll, nil); err != nil {
		return err
	}

	log.Info().Str("poll", poll.ID).Str("admin", user.ID).Msg("A poll has been deleted by administrator.")
	return nil
}

// deletePollWithVotes keeps the ownership filter on the write when owner is set.
func deletePollWithVotes(ctx context.Context, poll models.Poll, owner *string) error {
	err := database.C.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Where("id = ?", poll.ID)
		if owner != nil {
			query = query.Where("account_id = ?", *owner)
		}
		result := query.Delete(&models.Poll{})
		if result.Error != nil {
			return result.Error
		} else if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Where("poll_id = ?", poll.ID).Delete(&models.PollFlag{}).Error; err != nil {
			return err
		}
		return tx.Where("poll_id = ?", poll.ID).Delete(&models.Vote{}).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: poll does not exist", ErrNotFound)
	} else if err != nil {
		return storeFailure(err, "unable to delete poll")
	}

	InvalidatePollViews(poll.ID, poll.AccountID)

	return nil
}
