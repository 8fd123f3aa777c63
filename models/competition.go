package models

import "fmt"

// Review pipeline stages. Transitions are driven by the committee's review
// tooling; this application only reads the stage to unlock steps.
const (
	StatusPendingVerification = 0 // awaiting member/document verification
	StatusAwaitingDocuments   = 1 // awaiting competition-specific documents
	StatusAwaitingPayment     = 2 // awaiting payment verification
	StatusWaitlisted          = 3
	StatusAccepted            = 4
)

// Per-document verification flags, set by the review tooling.
const (
	DocPending  = 0
	DocRejected = 1
	DocAccepted = 2
)

// Member roles. Exactly one MANAGER per team, assigned to the creator.
const (
	RoleManager = "MANAGER"
	RoleMember  = "MEMBER"
)

// Competition describes one event track. Team tracks carry a member
// capacity; individual tracks register a single participant per account.
type Competition struct {
	Code          string
	Name          string
	EventTag      string
	Capacity      int
	StoragePrefix string
	Individual    bool
}

var competitions = map[string]Competition{
	"hackathon": {Code: "hackathon", Name: "Mining Hackathon", EventTag: "HACK", Capacity: 5, StoragePrefix: "hackathon"},
	"mining":    {Code: "mining", Name: "Mining Competition", EventTag: "MINE", Capacity: 7, StoragePrefix: "mining"},
	"paper":     {Code: "paper", Name: "Paper Competition", EventTag: "PAPER", Capacity: 3, StoragePrefix: "paper"},
	"poster":    {Code: "poster", Name: "Poster Competition", EventTag: "POSTER", Capacity: 1, StoragePrefix: "poster", Individual: true},
	"photo":     {Code: "photo", Name: "Photography Competition", EventTag: "PHOTO", Capacity: 1, StoragePrefix: "photo", Individual: true},
}

// CompetitionByCode looks up a competition by its URL code.
func CompetitionByCode(code string) (Competition, bool) {
	c, ok := competitions[code]
	return c, ok
}

// Competitions returns every registered competition.
func Competitions() []Competition {
	out := make([]Competition, 0, len(competitions))
	for _, c := range competitions {
		out = append(out, c)
	}
	return out
}

// Storage folders per document kind. Keys under a folder are always
// {folder}/{account_id}.{ext}, so a re-upload overwrites the prior file.
func (c Competition) IDCardFolder() string     { return c.StoragePrefix + "-id" }
func (c Competition) PaymentFolder() string    { return c.StoragePrefix + "-pp" }
func (c Competition) SubmissionFolder() string { return c.StoragePrefix + "-sub" }

// ObjectKey builds the deterministic storage key for an account's upload.
func ObjectKey(folder string, accountID uint, ext string) string {
	return fmt.Sprintf("%s/%d%s", folder, accountID, ext)
}

// Step gating, read by the handlers to decide which actions are open.
// Profile and identity documents stay editable while the registration is
// under initial verification; rejected documents may be replaced at any
// non-terminal stage.
func ProfileOpen(status int) bool    { return status == StatusPendingVerification }
func SubmissionOpen(status int) bool { return status == StatusAwaitingDocuments }
func PaymentOpen(status int) bool    { return status == StatusAwaitingPayment }
func Terminal(status int) bool       { return status >= StatusWaitlisted }

// ReuploadOpen reports whether a document with the given verification flag
// may be replaced at the given stage.
func ReuploadOpen(status, flag int) bool {
	if Terminal(status) {
		return false
	}
	return flag == DocRejected
}
