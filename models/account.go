package models

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"gorm.io/gorm"
)

// Account is an identity record. Competition membership hangs off Member
// and Participant rows; the joined event tags are denormalized into
// AccountEvent rows so the session can carry them.
type Account struct {
	gorm.Model

	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	VerifiedAt   *time.Time `json:"verified_at"`

	Events []AccountEvent `gorm:"foreignKey:AccountID" json:"events,omitempty"`
}

// AccountEvent marks an account as joined to one event tag (HACK, MINE, ...).
type AccountEvent struct {
	gorm.Model
	AccountID uint   `gorm:"not null;index;uniqueIndex:idx_account_event" json:"account_id"`
	Event     string `gorm:"not null;size:10;uniqueIndex:idx_account_event" json:"event"`
}

// EventTags flattens the joined events for session claims.
func (a *Account) EventTags() []string {
	tags := make([]string, 0, len(a.Events))
	for _, e := range a.Events {
		tags = append(tags, e.Event)
	}
	return tags
}

// VerificationToken is a single-use email verification token. One live
// token per identifier; issuing a new one replaces the old.
type VerificationToken struct {
	gorm.Model
	Identifier string    `gorm:"not null;uniqueIndex" json:"identifier"` // account email
	Token      string    `gorm:"not null;uniqueIndex" json:"-"`
	ExpiresAt  time.Time `gorm:"not null" json:"expires_at"`
}

// Expired reports whether the token is past its expiry.
func (t *VerificationToken) Expired() bool {
	return time.Now().After(t.ExpiresAt)
}

const verificationTokenTTL = time.Hour

// CreateAccount inserts a new account, mapping the email uniqueness
// constraint to ErrEmailTaken.
func CreateAccount(db *gorm.DB, email, passwordHash string) (*Account, error) {
	account := Account{Email: email, PasswordHash: passwordHash}
	if err := db.Create(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return &account, nil
}

// IssueVerificationToken creates a fresh 1-hour token for the identifier,
// replacing any previous one.
func IssueVerificationToken(db *gorm.DB, identifier string) (*VerificationToken, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, err
	}

	token := VerificationToken{
		Identifier: identifier,
		Token:      hex.EncodeToString(raw),
		ExpiresAt:  time.Now().Add(verificationTokenTTL),
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("identifier = ?", identifier).Delete(&VerificationToken{}).Error; err != nil {
			return err
		}
		return tx.Create(&token).Error
	})
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// ConsumeVerificationToken validates the token, marks the matching account
// verified and deletes the token row. Expired or unknown tokens fail
// without side effects.
func ConsumeVerificationToken(db *gorm.DB, tokenValue string) (*Account, error) {
	var account Account

	err := db.Transaction(func(tx *gorm.DB) error {
		var token VerificationToken
		if err := tx.Where("token = ?", tokenValue).First(&token).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &DomainError{Code: "TOKEN_INVALID", Message: "Verification token does not exist"}
			}
			return err
		}
		if token.Expired() {
			return &DomainError{Code: "TOKEN_EXPIRED", Message: "Verification token has expired"}
		}

		if err := tx.Where("email = ?", token.Identifier).First(&account).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &DomainError{Code: "TOKEN_INVALID", Message: "Verification token does not match an account"}
			}
			return err
		}

		now := time.Now()
		account.VerifiedAt = &now
		// Keep the email in sync in case the token was issued for an
		// address change.
		account.Email = token.Identifier
		if err := tx.Save(&account).Error; err != nil {
			return err
		}

		return tx.Unscoped().Delete(&token).Error
	})
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// AddAccountEvent tags the account as joined to an event. Safe to call
// twice; the duplicate insert is swallowed.
func AddAccountEvent(db *gorm.DB, accountID uint, event string) error {
	err := db.Create(&AccountEvent{AccountID: accountID, Event: event}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil
	}
	return err
}

// RemoveAccountEvent drops an event tag, e.g. after leaving a team.
func RemoveAccountEvent(db *gorm.DB, accountID uint, event string) error {
	return db.Unscoped().
		Where("account_id = ? AND event = ?", accountID, event).
		Delete(&AccountEvent{}).Error
}
