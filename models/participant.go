package models

import (
	"errors"

	"gorm.io/gorm"
)

// Participant is a single-entrant registration for the individual
// competitions (poster, photo). It flattens the account, member and team
// shape into one row: there is no team concept, but the document and
// review fields are identical.
type Participant struct {
	gorm.Model

	Competition string `gorm:"not null;size:20;uniqueIndex:idx_participant_comp_account" json:"competition"`
	AccountID   uint   `gorm:"not null;uniqueIndex:idx_participant_comp_account" json:"account_id"`

	FullName    string `gorm:"not null;size:100" json:"full_name"`
	Institution string `gorm:"size:100" json:"institution"`
	Phone       string `gorm:"size:20" json:"phone"`
	IDNumber    string `gorm:"size:30" json:"id_number"`

	Status     int    `gorm:"default:0" json:"status"`
	AdminNotes string `gorm:"type:text" json:"admin_notes"`

	IDCardLink      string `json:"id_card_link"`
	IDCardVerified  int    `gorm:"default:0" json:"id_card_verified"`
	PaymentLink     string `json:"pp_link"`
	PaymentVerified int    `gorm:"default:0" json:"pp_verified"`

	SubmissionLink        string `json:"submission_link"`
	SubmissionDescription string `gorm:"type:text" json:"submission_description"`
	SubmissionVerified    int    `gorm:"default:0" json:"submission_verified"`
}

// RegisterParticipant creates the registration row and tags the account
// with the competition's event, atomically.
func RegisterParticipant(db *gorm.DB, comp Competition, accountID uint, profile MemberProfile) (*Participant, error) {
	participant := Participant{
		Competition: comp.Code,
		AccountID:   accountID,
		FullName:    profile.FullName,
		Institution: profile.Institution,
		Phone:       profile.Phone,
		IDNumber:    profile.IDNumber,
		Status:      StatusPendingVerification,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&participant).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyRegistered
			}
			return err
		}
		return AddAccountEvent(tx, accountID, comp.EventTag)
	})
	if err != nil {
		return nil, err
	}
	return &participant, nil
}

// ParticipantForAccount returns the account's registration in the competition.
func ParticipantForAccount(db *gorm.DB, comp Competition, accountID uint) (*Participant, error) {
	var participant Participant
	if err := db.Where("competition = ? AND account_id = ?", comp.Code, accountID).
		First(&participant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotRegistered
		}
		return nil, err
	}
	return &participant, nil
}

// WithdrawParticipant removes a registration before payment review begins.
func WithdrawParticipant(db *gorm.DB, comp Competition, accountID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		participant, err := ParticipantForAccount(tx, comp, accountID)
		if err != nil {
			return err
		}
		if participant.Status >= StatusAwaitingPayment {
			return ErrStageLocked
		}

		if err := tx.Unscoped().Delete(participant).Error; err != nil {
			return err
		}
		return RemoveAccountEvent(tx, accountID, comp.EventTag)
	})
}

// UpdateProfile writes the editable profile fields.
func (p *Participant) UpdateProfile(db *gorm.DB, profile MemberProfile) error {
	return db.Model(p).Updates(map[string]interface{}{
		"full_name":   profile.FullName,
		"institution": profile.Institution,
		"phone":       profile.Phone,
		"id_number":   profile.IDNumber,
	}).Error
}

// SetIDCard records a new ID card upload and resets its review flag.
func (p *Participant) SetIDCard(db *gorm.DB, key string) error {
	return db.Model(p).Updates(map[string]interface{}{
		"id_card_link":     key,
		"id_card_verified": DocPending,
	}).Error
}

// SetPaymentProof records a new payment proof upload and resets its review flag.
func (p *Participant) SetPaymentProof(db *gorm.DB, key string) error {
	return db.Model(p).Updates(map[string]interface{}{
		"payment_link":     key,
		"payment_verified": DocPending,
	}).Error
}

// SetSubmission records the participant's submission and resets its review flag.
func (p *Participant) SetSubmission(db *gorm.DB, key, description string) error {
	return db.Model(p).Updates(map[string]interface{}{
		"submission_link":        key,
		"submission_description": description,
		"submission_verified":    DocPending,
	}).Error
}
