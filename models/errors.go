package models

import "errors"

// DomainError is a conflict the caller can act on, identified by a stable
// code instead of message text. Controllers map codes to form errors.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DomainError) Error() string { return e.Message }

var (
	ErrEmailTaken        = &DomainError{Code: "EMAIL_EXISTS", Message: "Email already registered"}
	ErrTeamNameTaken     = &DomainError{Code: "TEAM_NAME_TAKEN", Message: "Team name is already in use"}
	ErrTeamFull          = &DomainError{Code: "TEAM_FULL", Message: "Team has reached its member limit"}
	ErrAlreadyRegistered = &DomainError{Code: "ALREADY_REGISTERED", Message: "Account is already registered in this competition"}
	ErrTeamNotFound      = &DomainError{Code: "TEAM_NOT_FOUND", Message: "No team matches that code"}
	ErrNotRegistered     = &DomainError{Code: "NOT_REGISTERED", Message: "Account is not registered in this competition"}
	ErrCodeExhausted     = &DomainError{Code: "CODE_EXHAUSTED", Message: "Could not allocate a team code, please try again"}
	ErrManagerOnly       = &DomainError{Code: "MANAGER_ONLY", Message: "Only the team manager may do this"}
	ErrManagerLocked     = &DomainError{Code: "MANAGER_LOCKED", Message: "The team manager cannot leave the team"}
	ErrStageLocked       = &DomainError{Code: "STAGE_LOCKED", Message: "This step is not open at the current review stage"}
)

// AsDomain unwraps err into a DomainError if it carries one.
func AsDomain(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
