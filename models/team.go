package models

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Team is one entry in a team competition. Name uniqueness is
// case-insensitive per competition via the lowercased name_key column;
// the join code is unique per competition.
type Team struct {
	gorm.Model

	Competition string `gorm:"not null;size:20;uniqueIndex:idx_team_comp_name,priority:1;uniqueIndex:idx_team_comp_code,priority:1" json:"competition"`
	Name        string `gorm:"not null;size:100" json:"name"`
	NameKey     string `gorm:"not null;size:100;uniqueIndex:idx_team_comp_name,priority:2" json:"-"`
	Code        string `gorm:"not null;size:5;uniqueIndex:idx_team_comp_code,priority:2" json:"code"`

	Status     int    `gorm:"default:0" json:"status"`
	AdminNotes string `gorm:"type:text" json:"admin_notes"`

	SubmissionLink        string `json:"submission_link"`
	SubmissionDescription string `gorm:"type:text" json:"submission_description"`
	SubmissionVerified    int    `gorm:"default:0" json:"submission_verified"`

	Members []Member `gorm:"foreignKey:TeamID" json:"members,omitempty"`
}

// Member links an account to a team with its profile and per-document
// verification flags. One membership per account per competition.
type Member struct {
	gorm.Model

	Competition string `gorm:"not null;size:20;uniqueIndex:idx_member_comp_account" json:"competition"`
	TeamID      uint   `gorm:"not null;index" json:"team_id"`
	AccountID   uint   `gorm:"not null;uniqueIndex:idx_member_comp_account" json:"account_id"`
	Role        string `gorm:"not null;size:10" json:"role"`

	FullName    string `gorm:"not null;size:100" json:"full_name"`
	Institution string `gorm:"size:100" json:"institution"`
	Phone       string `gorm:"size:20" json:"phone"`
	IDNumber    string `gorm:"size:30" json:"id_number"`

	IDCardLink      string `json:"id_card_link"`
	IDCardVerified  int    `gorm:"default:0" json:"id_card_verified"`
	PaymentLink     string `json:"payment_link"`
	PaymentVerified int    `gorm:"default:0" json:"payment_verified"`

	AdminNotes string `gorm:"type:text" json:"admin_notes"`
}

// MemberProfile carries the personal fields collected on create/join forms.
type MemberProfile struct {
	FullName    string
	Institution string
	Phone       string
	IDNumber    string
}

// TeamNameKey normalizes a team name for case-insensitive uniqueness.
func TeamNameKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// errTeamRowConflict marks a duplicate-key failure on the team insert
// itself, before it has been attributed to the name or the join code.
var errTeamRowConflict = errors.New("team row conflict")

// CreateTeamWithManager creates a team and its creator's MANAGER member row
// in one transaction; nothing persists if any step fails. The join code is
// allocated inside the same transaction, and the creator's account gains
// the competition's event tag.
//
// The team row carries unique indexes on both name_key and code. When the
// insert still reports a duplicate after the name pre-check passed, either
// the name was committed concurrently (a user error) or the drawn code
// collided; code collisions retry the whole creation with a fresh code.
func CreateTeamWithManager(db *gorm.DB, comp Competition, name string, accountID uint, profile MemberProfile) (*Team, error) {
	nameKey := TeamNameKey(name)

	for attempt := 0; attempt < teamCodeAttempts; attempt++ {
		team, err := createTeamOnce(db, comp, name, nameKey, accountID, profile)
		if err == nil {
			return team, nil
		}
		if !errors.Is(err, errTeamRowConflict) {
			return nil, err
		}
		if err := resolveTeamInsertConflict(db, comp, nameKey); err != nil {
			return nil, err
		}
	}
	return nil, ErrCodeExhausted
}

func createTeamOnce(db *gorm.DB, comp Competition, name, nameKey string, accountID uint, profile MemberProfile) (*Team, error) {
	var created Team
	err := db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Member{}).
			Where("competition = ? AND account_id = ?", comp.Code, accountID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyRegistered
		}

		// Pre-check the name so the common conflict reports cleanly; the
		// unique index on name_key still backstops the race.
		if err := tx.Model(&Team{}).
			Where("competition = ? AND name_key = ?", comp.Code, nameKey).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrTeamNameTaken
		}

		code, err := allocateTeamCode(tx, comp.Code)
		if err != nil {
			return err
		}

		created = Team{
			Competition: comp.Code,
			Name:        strings.TrimSpace(name),
			NameKey:     nameKey,
			Code:        code,
			Status:      StatusPendingVerification,
		}
		if err := tx.Create(&created).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errTeamRowConflict
			}
			return err
		}

		manager := Member{
			Competition: comp.Code,
			TeamID:      created.ID,
			AccountID:   accountID,
			Role:        RoleManager,
			FullName:    profile.FullName,
			Institution: profile.Institution,
			Phone:       profile.Phone,
			IDNumber:    profile.IDNumber,
		}
		if err := tx.Create(&manager).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyRegistered
			}
			return err
		}
		created.Members = []Member{manager}

		return AddAccountEvent(tx, accountID, comp.EventTag)
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// resolveTeamInsertConflict decides which unique index a duplicate team
// insert hit, after the transaction rolled back. A committed row with the
// same name means the name race was lost; otherwise the join code collided
// and the caller may retry with a fresh one.
func resolveTeamInsertConflict(db *gorm.DB, comp Competition, nameKey string) error {
	var count int64
	if err := db.Model(&Team{}).
		Where("competition = ? AND name_key = ?", comp.Code, nameKey).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrTeamNameTaken
	}
	return nil
}

// JoinTeamByCode adds the account to the team identified by code. The
// capacity check and the member insert are a single conditional INSERT, so
// two concurrent joins cannot both land in a team with one free slot.
func JoinTeamByCode(db *gorm.DB, comp Competition, code string, accountID uint, profile MemberProfile) (*Team, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	var team Team
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("competition = ? AND code = ?", comp.Code, code).
			First(&team).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTeamNotFound
			}
			return err
		}

		// Duplicate membership must win over the capacity report: the count
		// guard below would suppress the insert on a full team before the
		// unique index could object.
		var count int64
		if err := tx.Model(&Member{}).
			Where("competition = ? AND account_id = ?", comp.Code, accountID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyRegistered
		}

		now := time.Now()
		res := tx.Exec(`
			INSERT INTO members (created_at, updated_at, competition, team_id, account_id, role, full_name, institution, phone, id_number)
			SELECT ?, ?, ?, ?, ?, ?, ?, ?, ?, ?
			WHERE (SELECT COUNT(*) FROM members WHERE team_id = ? AND deleted_at IS NULL) < ?`,
			now, now, comp.Code, team.ID, accountID, RoleMember,
			profile.FullName, profile.Institution, profile.Phone, profile.IDNumber,
			team.ID, comp.Capacity)
		if res.Error != nil {
			if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
				return ErrAlreadyRegistered
			}
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrTeamFull
		}

		return AddAccountEvent(tx, accountID, comp.EventTag)
	})
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// TeamForAccount returns the account's team in the competition together
// with its own member row.
func TeamForAccount(db *gorm.DB, comp Competition, accountID uint) (*Team, *Member, error) {
	var member Member
	if err := db.Where("competition = ? AND account_id = ?", comp.Code, accountID).
		First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotRegistered
		}
		return nil, nil, err
	}

	var team Team
	if err := db.Preload("Members").First(&team, member.TeamID).Error; err != nil {
		return nil, nil, err
	}
	return &team, &member, nil
}

// LeaveTeam removes a MEMBER row before payment review begins. Managers
// cannot leave; they carry the team.
func LeaveTeam(db *gorm.DB, comp Competition, accountID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var member Member
		if err := tx.Where("competition = ? AND account_id = ?", comp.Code, accountID).
			First(&member).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotRegistered
			}
			return err
		}
		if member.Role == RoleManager {
			return ErrManagerLocked
		}

		var team Team
		if err := tx.First(&team, member.TeamID).Error; err != nil {
			return err
		}
		if team.Status >= StatusAwaitingPayment {
			return ErrStageLocked
		}

		if err := tx.Unscoped().Delete(&member).Error; err != nil {
			return err
		}
		return RemoveAccountEvent(tx, accountID, comp.EventTag)
	})
}

// UpdateProfile writes the editable profile fields.
func (m *Member) UpdateProfile(db *gorm.DB, profile MemberProfile) error {
	return db.Model(m).Updates(map[string]interface{}{
		"full_name":   profile.FullName,
		"institution": profile.Institution,
		"phone":       profile.Phone,
		"id_number":   profile.IDNumber,
	}).Error
}

// SetIDCard records a new ID card upload and resets its review flag.
func (m *Member) SetIDCard(db *gorm.DB, key string) error {
	return db.Model(m).Updates(map[string]interface{}{
		"id_card_link":     key,
		"id_card_verified": DocPending,
	}).Error
}

// SetPaymentProof records a new payment proof upload and resets its review flag.
func (m *Member) SetPaymentProof(db *gorm.DB, key string) error {
	return db.Model(m).Updates(map[string]interface{}{
		"payment_link":     key,
		"payment_verified": DocPending,
	}).Error
}

// SetSubmission records the team's submission and resets its review flag.
// The team's overall status is deliberately untouched; stage changes stay
// with the review tooling.
func (t *Team) SetSubmission(db *gorm.DB, key, description string) error {
	return db.Model(t).Updates(map[string]interface{}{
		"submission_link":        key,
		"submission_description": description,
		"submission_verified":    DocPending,
	}).Error
}
