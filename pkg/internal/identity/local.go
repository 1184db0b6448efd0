package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"git.solsynth.dev/hypernet/polls/pkg/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 6

var accountValidator = validator.New()

// LocalProvider keeps accounts and sessions in the service database and
// hands out HS256 tokens that reference a session row.
type LocalProvider struct {
	db     *gorm.DB
	secret []byte
	ttl    time.Duration
	admins []string
}

func NewLocalProvider(db *gorm.DB, secret string, ttl time.Duration, admins []string) (*LocalProvider, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("token secret is required")
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &LocalProvider{
		db:     db,
		secret: []byte(secret),
		ttl:    ttl,
		admins: lo.Map(admins, func(item string, _ int) string {
			return normalizeEmail(item)
		}),
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (v *LocalProvider) SignUp(ctx context.Context, name, email, password string) (Session, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if len(name) == 0 {
		return Session{}, fmt.Errorf("%w: name is required", ErrInvalidAccount)
	}
	if err := accountValidator.Var(email, "required,email"); err != nil {
		return Session{}, fmt.Errorf("%w: email is malformed", ErrInvalidAccount)
	}
	if len(password) < minPasswordLength {
		return Session{}, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidAccount, minPasswordLength)
	}

	var count int64
	if err := v.db.WithContext(ctx).Model(&models.Account{}).Where("email = ?", email).Count(&count).Error; err != nil {
		log.Error().Err(err).Msg("An error occurred when checking email...")
		return Session{}, ErrUnavailable
	} else if count > 0 {
		return Session{}, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Session{}, fmt.Errorf("%w: password cannot be used", ErrInvalidAccount)
	}

	account := models.Account{
		Name:     name,
		Email:    email,
		Password: string(hash),
		IsAdmin:  lo.Contains(v.admins, email),
	}
	if err := v.db.WithContext(ctx).Create(&account).Error; errors.Is(err, gorm.ErrDuplicatedKey) {
		return Session{}, ErrEmailTaken
	} else if err != nil {
		log.Error().Err(err).Msg("An error occurred when creating account...")
		return Session{}, ErrUnavailable
	}

	log.Info().Str("account", account.ID).Bool("admin", account.IsAdmin).Msg("A new account has been registered.")

	return v.grant(ctx, account)
}

func (v *LocalProvider) SignIn(ctx context.Context, email, password string) (Session, error) {
	var account models.Account
	if err := v.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		log.Error().Err(err).Msg("An error occurred when loading account...")
		return Session{}, ErrUnavailable
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	return v.grant(ctx, account)
}

func (v *LocalProvider) grant(ctx context.Context, account models.Account) (Session, error) {
	session := models.Session{
		AccountID: account.ID,
		ExpiredAt: time.Now().Add(v.ttl),
	}
	if err := v.db.WithContext(ctx).Create(&session).Error; err != nil {
		log.Error().Err(err).Msg("An error occurred when creating session...")
		return Session{}, ErrUnavailable
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        session.ID,
		Subject:   account.ID,
		IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
		ExpiresAt: jwt.NewNumericDate(session.ExpiredAt),
	})
	signed, err := token.SignedString(v.secret)
	if err != nil {
		return Session{}, fmt.Errorf("unable to sign token: %v", err)
	}

	return Session{
		Token:     signed,
		ExpiredAt: session.ExpiredAt,
		Account:   account,
	}, nil
}

func (v *LocalProvider) parse(token string) (*jwt.RegisteredClaims, error) {
	claims := new(jwt.RegisteredClaims)
	if _, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})); err != nil {
		return nil, ErrInvalidSession
	}
	if len(claims.ID) == 0 || len(claims.Subject) == 0 {
		return nil, ErrInvalidSession
	}
	return claims, nil
}

func (v *LocalProvider) GetCurrentUser(ctx context.Context, token string) (models.Account, error) {
	var account models.Account

	claims, err := v.parse(token)
	if err != nil {
		return account, err
	}

	var session models.Session
	if err := v.db.WithContext(ctx).
		Where("id = ? AND account_id = ? AND expired_at > ?", claims.ID, claims.Subject, time.Now()).
		First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return account, ErrInvalidSession
		}
		log.Error().Err(err).Msg("An error occurred when loading session...")
		return account, ErrUnavailable
	}

	if err := v.db.WithContext(ctx).Where("id = ?", session.AccountID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return account, ErrInvalidSession
		}
		log.Error().Err(err).Msg("An error occurred when loading account...")
		return account, ErrUnavailable
	}

	return account, nil
}

func (v *LocalProvider) SignOut(ctx context.Context, token string) error {
	claims, err := v.parse(token)
	if err != nil {
		return err
	}

	if err := v.db.WithContext(ctx).
		Where("id = ? AND account_id = ?", claims.ID, claims.Subject).
		Delete(&models.Session{}).Error; err != nil {
		log.Error().Err(err).Msg("An error occurred when revoking session...")
		return ErrUnavailable
	}

	return nil
}

// DeleteAccount removes the account and every session it holds.
func (v *LocalProvider) DeleteAccount(ctx context.Context, accountID string) error {
	return v.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("account_id = ?", accountID).Delete(&models.Session{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", accountID).Delete(&models.Account{}).Error
	})
}
