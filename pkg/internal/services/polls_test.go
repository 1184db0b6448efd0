package services

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"git.solsynth.dev/hypernet/polls/pkg/internal/models"
	"git.solsynth.dev/hypernet/polls/pkg/internal/testutil"
	"gorm.io/gorm"
)

func TestNormalizePollInput(t *testing.T) {
	tests := []struct {
		name        string
		question    string
		options     []string
		wantErr     bool
		wantOptions []string
	}{
		{
			name:        "valid poll",
			question:    "Best color?",
			options:     []string{"Red", "Blue"},
			wantOptions: []string{"Red", "Blue"},
		},
		{
			name:        "blank options are dropped",
			question:    "  Best color?  ",
			options:     []string{" Red ", "", "   ", "Blue"},
			wantOptions: []string{"Red", "Blue"},
		},
		{
			name:     "empty question",
			question: "",
			options:  []string{"a", "b"},
			wantErr:  true,
		},
		{
			name:     "whitespace question",
			question: "   ",
			options:  []string{"a", "b"},
			wantErr:  true,
		},
		{
			name:     "single option",
			question: "Q?",
			options:  []string{"a"},
			wantErr:  true,
		},
		{
			name:     "single non-blank option",
			question: "Q?",
			options:  []string{"a", " ", ""},
			wantErr:  true,
		},
		{
			name:     "question too long",
			question: strings.Repeat("q", 257),
			options:  []string{"a", "b"},
			wantErr:  true,
		},
		{
			name:     "option too long",
			question: "Q?",
			options:  []string{"a", strings.Repeat("o", 129)},
			wantErr:  true,
		},
		{
			name:     "too many options",
			question: "Q?",
			options:  strings.Split(strings.Repeat("x,", 21)+"x", ","),
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			question, options, err := NormalizePollInput(tt.question, tt.options)
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("Expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if question != strings.TrimSpace(tt.question) {
				t.Errorf("Expected question %q, got %q", strings.TrimSpace(tt.question), question)
			}
			if strings.Join(options, "|") != strings.Join(tt.wantOptions, "|") {
				t.Errorf("Expected options %v, got %v", tt.wantOptions, options)
			}
		})
	}
}

func TestNewPoll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	owner := testutil.CreateTestAccount(t, db, "u1", false)

	poll, err := NewPoll(ctx, &owner, "Best color?", []string{"Red", "", "Blue"})
	if err != nil {
		t.Fatalf("Failed to create poll: %v", err)
	}
	if len(poll.ID) == 0 {
		t.Error("Expected poll ID to be generated")
	}
	if poll.AccountID != owner.ID {
		t.Errorf("Expected owner %s, got %s", owner.ID, poll.AccountID)
	}
	if len(poll.Options) != 2 {
		t.Errorf("Expected 2 options, got %v", poll.Options)
	}
	if poll.CreatedAt.IsZero() {
		t.Error("Expected created_at to be set")
	}

	var stored models.Poll
	if err := db.Where("id = ?", poll.ID).First(&stored).Error; err != nil {
		t.Fatalf("Poll was not stored: %v", err)
	}
	if stored.Question != "Best color?" {
		t.Errorf("Expected stored question, got %q", stored.Question)
	}
}

func TestNewPollRejections(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	owner := testutil.CreateTestAccount(t, db, "u1", false)

	if _, err := NewPoll(ctx, nil, "Best color?", []string{"Red", "Blue"}); !errors.Is(err, ErrAuth) {
		t.Errorf("Expected auth error for anonymous user, got %v", err)
	}
	if _, err := NewPoll(ctx, &owner, "", []string{"a", "b"}); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected validation error for empty question, got %v", err)
	}
	if _, err := NewPoll(ctx, &owner, "Q?", []string{"a"}); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected validation error for single option, got %v", err)
	}

	var count int64
	db.Model(&models.Poll{}).Count(&count)
	if count != 0 {
		t.Errorf("Expected no polls stored, got %d", count)
	}
}

func TestListPollsByOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	u1 := testutil.CreateTestAccount(t, db, "u1", false)
	u2 := testutil.CreateTestAccount(t, db, "u2", false)

	polls, err := ListPollsByOwner(ctx, &u1)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if polls == nil || len(polls) != 0 {
		t.Errorf("Expected empty list, got %v", polls)
	}

	older, _ := NewPoll(ctx, &u1, "Older?", []string{"a", "b"})
	newer, _ := NewPoll(ctx, &u1, "Newer?", []string{"a", "b"})
	_, _ = NewPoll(ctx, &u2, "Someone else?", []string{"a", "b"})

	db.Model(&models.Poll{}).Where("id = ?", older.ID).UpdateColumn("created_at", time.Now().Add(-2*time.Hour))
	db.Model(&models.Poll{}).Where("id = ?", newer.ID).UpdateColumn("created_at", time.Now().Add(-1*time.Hour))

	polls, err = ListPollsByOwner(ctx, &u1)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(polls) != 2 {
		t.Fatalf("Expected 2 polls, got %d", len(polls))
	}
	if polls[0].ID != newer.ID || polls[1].ID != older.ID {
		t.Errorf("Expected newest first, got %s then %s", polls[0].Question, polls[1].Question)
	}

	seen := 0
	for _, poll := range polls {
		if poll.AccountID != u1.ID {
			t.Errorf("Listed a poll owned by %s", poll.AccountID)
		}
		if poll.ID == older.ID {
			seen++
		}
	}
	if seen != 1 {
		t.Errorf("Expected created poll exactly once, got %d", seen)
	}

	if _, err := ListPollsByOwner(ctx, nil); !errors.Is(err, ErrAuth) {
		t.Errorf("Expected auth error for anonymous user, got %v", err)
	}
}

func TestGetPoll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	owner := testutil.CreateTestAccount(t, db, "u1", false)
	created := testutil.CreateTestPoll(t, db, owner, "Best color?", "Red", "Blue")

	poll, err := GetPoll(ctx, created.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if poll.Question != "Best color?" || len(poll.Options) != 2 {
		t.Errorf("Unexpected poll: %+v", poll)
	}

	if _, err := GetPoll(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected not found, got %v", err)
	}
}

func TestUpdatePoll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	u1 := testutil.CreateTestAccount(t, db, "u1", false)
	u2 := testutil.CreateTestAccount(t, db, "u2", false)
	admin := testutil.CreateTestAccount(t, db, "admin", true)
	poll := testutil.CreateTestPoll(t, db, u1, "Best color?", "Red", "Blue")

	t.Run("non-owner cannot update", func(t *testing.T) {
		_, err := UpdatePoll(ctx, &u2, poll.ID, "Hijacked?", []string{"x", "y"})
		if !errors.Is(err, ErrAuth) {
			t.Fatalf("Expected auth error, got %v", err)
		}
		current, err := GetPoll(ctx, poll.ID)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if current.Question != "Best color?" || current.Options[0] != "Red" || current.Options[1] != "Blue" {
			t.Errorf("Poll changed by non-owner: %+v", current)
		}
	})

	t.Run("admin cannot update", func(t *testing.T) {
		if _, err := UpdatePoll(ctx, &admin, poll.ID, "Admin edit?", []string{"x", "y"}); !errors.Is(err, ErrAuth) {
			t.Fatalf("Expected auth error, got %v", err)
		}
	})

	t.Run("anonymous cannot update", func(t *testing.T) {
		if _, err := UpdatePoll(ctx, nil, poll.ID, "Anon?", []string{"x", "y"}); !errors.Is(err, ErrAuth) {
			t.Fatalf("Expected auth error, got %v", err)
		}
	})

	t.Run("invalid shape", func(t *testing.T) {
		if _, err := UpdatePoll(ctx, &u1, poll.ID, "Best color?", []string{"Red", " "}); !errors.Is(err, ErrValidation) {
			t.Fatalf("Expected validation error, got %v", err)
		}
	})

	t.Run("missing poll", func(t *testing.T) {
		if _, err := UpdatePoll(ctx, &u1, "missing", "Q?", []string{"a", "b"}); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Expected not found, got %v", err)
		}
	})

	t.Run("owner updates", func(t *testing.T) {
		updated, err := UpdatePoll(ctx, &u1, poll.ID, "Best shade?", []string{"Green", "Yellow", "Cyan"})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if updated.AccountID != u1.ID {
			t.Errorf("Owner changed to %s", updated.AccountID)
		}
		current, err := GetPoll(ctx, poll.ID)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if current.Question != "Best shade?" || len(current.Options) != 3 {
			t.Errorf("Poll not updated: %+v", current)
		}
		if current.CreatedAt.Unix() != poll.CreatedAt.Unix() {
			t.Errorf("created_at changed from %v to %v", poll.CreatedAt, current.CreatedAt)
		}
	})
}

func TestDeletePoll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	u1 := testutil.CreateTestAccount(t, db, "u1", false)
	u2 := testutil.CreateTestAccount(t, db, "u2", false)
	poll := testutil.CreateTestPoll(t, db, u1, "Best color?", "Red", "Blue")

	if _, err := SubmitVote(ctx, nil, poll.ID, 0); err != nil {
		t.Fatalf("Failed to vote: %v", err)
	}

	if err := DeletePoll(ctx, &u2, poll.ID); !errors.Is(err, ErrAuth) {
		t.Fatalf("Expected auth error for non-owner, got %v", err)
	}
	if _, err := GetPoll(ctx, poll.ID); err != nil {
		t.Fatalf("Poll removed by non-owner: %v", err)
	}

	if err := DeletePoll(ctx, nil, poll.ID); !errors.Is(err, ErrAuth) {
		t.Fatalf("Expected auth error for anonymous, got %v", err)
	}

	if err := DeletePoll(ctx, &u1, poll.ID); err != nil {
		t.Fatalf("Failed to delete poll: %v", err)
	}
	if _, err := GetPoll(ctx, poll.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected not found after delete, got %v", err)
	}
	if count := testutil.CountVotes(t, db, poll.ID); count != 0 {
		t.Errorf("Expected votes removed with poll, got %d", count)
	}

	if err := DeletePoll(ctx, &u1, poll.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected not found on second delete, got %v", err)
	}
}

func TestDeletePollAsAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	u1 := testutil.CreateTestAccount(t, db, "u1", false)
	u2 := testutil.CreateTestAccount(t, db, "u2", false)
	admin := testutil.CreateTestAccount(t, db, "admin", true)
	poll := testutil.CreateTestPoll(t, db, u1, "Best color?", "Red", "Blue")

	if err := DeletePollAsAdmin(ctx, &u2, poll.ID); !errors.Is(err, ErrAuth) {
		t.Fatalf("Expected auth error for non-admin, got %v", err)
	}
	if err := DeletePollAsAdmin(ctx, &u1, poll.ID); !errors.Is(err, ErrAuth) {
		t.Fatalf("Expected auth error for owner on admin path, got %v", err)
	}
	if err := DeletePoll(ctx, &admin, poll.ID); !errors.Is(err, ErrAuth) {
		t.Fatalf("Expected owner path to reject admin, got %v", err)
	}

	if err := DeletePollAsAdmin(ctx, &admin, poll.ID); err != nil {
		t.Fatalf("Admin failed to delete poll: %v", err)
	}
	if _, err := GetPoll(ctx, poll.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected not found after admin delete, got %v", err)
	}
}

func TestEndToEndExample(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	u1 := testutil.CreateTestAccount(t, db, "u1", false)
	u2 := testutil.CreateTestAccount(t, db, "u2", false)

	poll, err := NewPoll(ctx, &u1, "Best color?", []string{"Red", "Blue"})
	if err != nil {
		t.Fatalf("Failed to create poll: %v", err)
	}
	if poll.AccountID != u1.ID {
		t.Fatalf("Expected owner u1, got %s", poll.AccountID)
	}

	vote, err := SubmitVote(ctx, nil, poll.ID, 0)
	if err != nil {
		t.Fatalf("Anonymous vote failed: %v", err)
	}
	if vote.AccountID != nil {
		t.Errorf("Expected anonymous vote, got voter %s", *vote.AccountID)
	}

	if _, err := UpdatePoll(ctx, &u2, poll.ID, "Best color?", []string{"Red", "Blue"}); !errors.Is(err, ErrAuth) {
		t.Errorf("Expected auth error, got %v", err)
	}

	current, _ := GetPoll(ctx, poll.ID)
	if current.Question != "Best color?" || len(current.Options) != 2 {
		t.Errorf("Poll changed: %+v", current)
	}
}

func TestFlagPoll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	u1 := testutil.CreateTestAccount(t, db, "u1", false)
	u2 := testutil.CreateTestAccount(t, db, "u2", false)
	u3 := testutil.CreateTestAccount(t, db, "u3", false)
	quiet := testutil.CreateTestPoll(t, db, u1, "Quiet?", "a", "b")
	loud := testutil.CreateTestPoll(t, db, u1, "Loud?", "a", "b")

	if _, err := NewFlag(ctx, nil, loud.ID); !errors.Is(err, ErrAuth) {
		t.Errorf("Expected auth error for anonymous, got %v", err)
	}
	if _, err := NewFlag(ctx, &u2, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected not found, got %v", err)
	}

	for _, user := range []*models.Account{&u2, &u3} {
		if _, err := NewFlag(ctx, user, loud.ID); err != nil {
			t.Fatalf("Failed to flag poll: %v", err)
		}
	}
	if _, err := NewFlag(ctx, &u2, quiet.ID); err != nil {
		t.Fatalf("Failed to flag poll: %v", err)
	}
	if _, err := NewFlag(ctx, &u2, loud.ID); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected validation error for repeat flag, got %v", err)
	}

	flagged, err := ListFlaggedPolls(ctx, 10, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(flagged) != 2 {
		t.Fatalf("Expected 2 flagged polls, got %d", len(flagged))
	}
	if flagged[0].ID != loud.ID || flagged[0].FlagCount != 2 {
		t.Errorf("Expected most reported poll first, got %+v", flagged[0])
	}

	if err := DeletePoll(ctx, &u1, loud.ID); err != nil {
		t.Fatalf("Failed to delete poll: %v", err)
	}
	var remaining int64
	db.Model(&models.PollFlag{}).Where("poll_id = ?", loud.ID).Count(&remaining)
	if remaining != 0 {
		t.Errorf("Expected flags removed with poll, got %d", remaining)
	}
}

func TestFlagPollConcurrentReport(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	owner := testutil.CreateTestAccount(t, db, "u1", false)
	reporter := testutil.CreateTestAccount(t, db, "u2", false)
	poll := testutil.CreateTestPoll(t, db, owner, "Loud?", "a", "b")

	// A second report from the same account lands between the duplicate
	// check and the insert.
	var armed atomic.Bool
	var insertErr error
	if err := db.Callback().Query().After("gorm:query").Register("flags:report_during_check", func(tx *gorm.DB) {
		if tx.Statement.Table != "poll_flags" || !armed.CompareAndSwap(true, false) {
			return
		}
		insertErr = db.Create(&models.PollFlag{PollID: poll.ID, AccountID: reporter.ID}).Error
	}); err != nil {
		t.Fatalf("Failed to register callback: %v", err)
	}

	armed.Store(true)
	if _, err := NewFlag(ctx, &reporter, poll.ID); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected validation error for racing report, got %v", err)
	}
	if insertErr != nil {
		t.Fatalf("Failed to insert competing report: %v", insertErr)
	}

	var count int64
	db.Model(&models.PollFlag{}).Where("poll_id = ? AND account_id = ?", poll.ID, reporter.ID).Count(&count)
	if count != 1 {
		t.Errorf("Expected a single report, got %d", count)
	}
}
