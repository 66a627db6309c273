package models

// SchemaVersion is the current persisted snapshot schema.
const SchemaVersion = 2

// DefaultUserID names the user created when a snapshot carries none.
const DefaultUserID = "default"

const (
	// MaxStage is the highest memorization stage. Stage is internal to the
	// scheduler and never surfaced as a user-facing label.
	MaxStage = 6

	// CounterCap bounds the advisory seen/remembered counters.
	CounterCap = 1_000_000

	// PointsCap bounds the spendable points balance.
	PointsCap = 1_000_000_000
)

// WordProgress tracks one user's review state for a single word.
type WordProgress struct {
	// Enrolled gates participation in spaced review.
	Enrolled bool `json:"enrolled"`
	// Stage is the memorization level, 0..MaxStage.
	Stage int `json:"stage"`
	// Due is the day on or after which the word is eligible for review.
	// Zero when not enrolled.
	Due Day `json:"due"`
	// LoopUntil, when equal to today, forces the word due regardless of Due.
	// Set after a wrong answer so the word repeats until answered correctly
	// the same day.
	LoopUntil Day `json:"loop_until"`
	// SeenCount and RememberedCount are advisory metrics; they never drive
	// scheduling.
	SeenCount       int `json:"seen_count"`
	RememberedCount int `json:"remembered_count"`
}

// NewWordProgress returns the default record a word springs into existence
// with on first reference.
func NewWordProgress() *WordProgress {
	return &WordProgress{}
}

// Reset puts the record back to its first-reference defaults.
func (p *WordProgress) Reset() {
	*p = WordProgress{}
}

// UserState holds one user's points balance and per-word progress.
type UserState struct {
	Points int `json:"points"`
	// ReviewCorrectSinceLastPoint counts correct reviews toward the next
	// point, always in [0,9].
	ReviewCorrectSinceLastPoint int                      `json:"review_correct_since_last_point"`
	Words                       map[string]*WordProgress `json:"words"`
}

// NewUserState returns an empty user entry.
func NewUserState() *UserState {
	return &UserState{Words: map[string]*WordProgress{}}
}

// Word returns the progress record for wordID, creating a default one if
// absent. The second return value reports whether it was created.
func (u *UserState) Word(wordID string) (*WordProgress, bool) {
	if u.Words == nil {
		u.Words = map[string]*WordProgress{}
	}
	if p, ok := u.Words[wordID]; ok {
		return p, false
	}
	p := NewWordProgress()
	u.Words[wordID] = p
	return p, true
}

// RootState is the single unit ever persisted: all users' progress at one
// point in time.
type RootState struct {
	SchemaVersion int                   `json:"schema_version"`
	ActiveUserID  string                `json:"active_user_id"`
	Users         map[string]*UserState `json:"users"`
}

// NewRootState returns a valid empty state with the default user present.
func NewRootState() *RootState {
	return &RootState{
		SchemaVersion: SchemaVersion,
		ActiveUserID:  DefaultUserID,
		Users:         map[string]*UserState{DefaultUserID: NewUserState()},
	}
}

// User returns the state for userID, creating an empty entry if absent.
// An empty userID resolves to the active user. The returned id is the one
// actually used; the bool reports whether an entry was created.
func (s *RootState) User(userID string) (string, *UserState, bool) {
	uid := userID
	if uid == "" {
		uid = s.ActiveUserID
	}
	if uid == "" {
		uid = DefaultUserID
	}
	if s.Users == nil {
		s.Users = map[string]*UserState{}
	}
	if u, ok := s.Users[uid]; ok {
		return uid, u, false
	}
	u := NewUserState()
	s.Users[uid] = u
	return uid, u, true
}
