package progress

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/example/tapspeak/internal/srs"
	"github.com/example/tapspeak/pkg/models"
)

// Ledger is the per-user, per-word progress record keeper. Every operation
// is a complete read-modify-write cycle: load the snapshot, normalize it,
// mutate in memory, save the whole thing back. No snapshot is cached across
// calls, so a failed save never leaves a stale state behind to be trusted by
// the next operation.
type Ledger struct {
	store Store
	sched *srs.Scheduler
	cfg   Config
}

// NewLedger creates a Ledger over the given snapshot store.
func NewLedger(store Store, cfg Config) (*Ledger, error) {
	sched, err := srs.New(cfg.Intervals)
	if err != nil {
		return nil, fmt.Errorf("failed to build scheduler: %v", err)
	}
	return &Ledger{store: store, sched: sched, cfg: cfg}, nil
}

// ReviewResult is the outcome tuple returned from mutation calls, consumed
// by the UI layer for sound/animation triggers. The engine itself performs
// no UI side effects.
type ReviewResult struct {
	Stage        int
	Due          models.Day
	Enrolled     bool
	PointsGained int
}

func (l *Ledger) load() (*models.RootState, error) {
	raw, err := l.store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %v", err)
	}
	return models.Normalize(raw), nil
}

func (l *Ledger) save(st *models.RootState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %v", err)
	}
	if err := l.store.Save(data); err != nil {
		return fmt.Errorf("failed to save snapshot: %v", err)
	}
	return nil
}

// ActiveUser returns the current active user id.
func (l *Ledger) ActiveUser() (string, error) {
	st, err := l.load()
	if err != nil {
		return "", err
	}
	return st.ActiveUserID, nil
}

// SetActiveUser switches the active user, creating the entry if needed, and
// returns the id actually set.
func (l *Ledger) SetActiveUser(userID string) (string, error) {
	st, err := l.load()
	if err != nil {
		return "", err
	}
	uid, _, _ := st.User(userID)
	st.ActiveUserID = uid
	if err := l.save(st); err != nil {
		return "", err
	}
	return uid, nil
}

// Users lists all known user ids in sorted order.
func (l *Ledger) Users() ([]string, error) {
	st, err := l.load()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(st.Users))
	for uid := range st.Users {
		ids = append(ids, uid)
	}
	sort.Strings(ids)
	return ids, nil
}

// GetProgress returns the progress record for a word, creating a default one
// if the user or word was never seen before. The snapshot is saved only when
// something was created.
func (l *Ledger) GetProgress(userID, wordID string) (models.WordProgress, error) {
	st, err := l.load()
	if err != nil {
		return models.WordProgress{}, err
	}
	_, u, createdUser := st.User(userID)
	p, createdWord := u.Word(wordID)
	if createdUser || createdWord {
		if err := l.save(st); err != nil {
			return models.WordProgress{}, err
		}
	}
	return *p, nil
}

// Enroll puts a word into spaced review at stage 0, due the same day. This
// is the only transition from not-enrolled to enrolled outside a defensive
// auto-enroll during review, and it always restarts the schedule at stage 0
// regardless of any prior stage.
func (l *Ledger) Enroll(userID, wordID string, today models.Day) (models.WordProgress, error) {
	if today.IsZero() {
		today = models.Today()
	}
	st, err := l.load()
	if err != nil {
		return models.WordProgress{}, err
	}
	_, u, _ := st.User(userID)
	p, _ := u.Word(wordID)

	p.Enrolled = true
	p.Stage = 0
	p.Due = today
	p.LoopUntil = ""
	if p.RememberedCount < models.CounterCap {
		p.RememberedCount++
	}

	if err := l.save(st); err != nil {
		return models.WordProgress{}, err
	}
	return *p, nil
}

// Unenroll removes a word from review: no longer due, loop cleared. Stage is
// deliberately left as-is; a later Enroll resets it to 0 anyway.
func (l *Ledger) Unenroll(userID, wordID string) (models.WordProgress, error) {
	st, err := l.load()
	if err != nil {
		return models.WordProgress{}, err
	}
	_, u, _ := st.User(userID)
	p, _ := u.Word(wordID)

	p.Enrolled = false
	p.Due = ""
	p.LoopUntil = ""

	if err := l.save(st); err != nil {
		return models.WordProgress{}, err
	}
	return *p, nil
}

// TouchSeen bumps the advisory seen counter and returns the new value.
func (l *Ledger) TouchSeen(userID, wordID string) (int, error) {
	st, err := l.load()
	if err != nil {
		return 0, err
	}
	_, u, _ := st.User(userID)
	p, _ := u.Word(wordID)

	if p.SeenCount < models.CounterCap {
		p.SeenCount++
	}

	if err := l.save(st); err != nil {
		return 0, err
	}
	return p.SeenCount, nil
}

// ApplyReviewResult records one review outcome for a word and reschedules
// it. Correct answers may earn points (1 per 10 correct, remainder carried).
func (l *Ledger) ApplyReviewResult(userID, wordID string, correct bool, today models.Day) (ReviewResult, error) {
	if today.IsZero() {
		today = models.Today()
	}
	st, err := l.load()
	if err != nil {
		return ReviewResult{}, err
	}
	_, u, _ := st.User(userID)
	p, _ := u.Word(wordID)

	gained := l.sched.ApplyOutcome(u, p, correct, today)

	if err := l.save(st); err != nil {
		return ReviewResult{}, err
	}
	return ReviewResult{
		Stage:        p.Stage,
		Due:          p.Due,
		Enrolled:     p.Enrolled,
		PointsGained: gained,
	}, nil
}

// DueWordIDs filters candidateIDs down to the words due on the given day,
// preserving input order. A nil candidate set means the user's tracked
// words, in sorted id order. Unknown word ids are silently excluded.
func (l *Ledger) DueWordIDs(userID string, candidateIDs []string, today models.Day) ([]string, error) {
	if today.IsZero() {
		today = models.Today()
	}
	st, err := l.load()
	if err != nil {
		return nil, err
	}
	_, u, _ := st.User(userID)

	source := candidateIDs
	if source == nil {
		source = make([]string, 0, len(u.Words))
		for wid := range u.Words {
			source = append(source, wid)
		}
		sort.Strings(source)
	}

	due := []string{}
	for _, wid := range source {
		if srs.IsDue(u.Words[wid], today) {
			due = append(due, wid)
		}
	}
	return due, nil
}

// Points returns the user's spendable points balance.
func (l *Ledger) Points(userID string) (int, error) {
	st, err := l.load()
	if err != nil {
		return 0, err
	}
	_, u, _ := st.User(userID)
	return u.Points, nil
}

// ResetUser zeroes one user's points and clears every tracked word back to
// its defaults, keeping the entries themselves and leaving all other users
// untouched. The pin must match the configured reset pin; on mismatch
// nothing changes and ok is false. A wrong pin is a reported failure, not
// an error.
func (l *Ledger) ResetUser(userID, pin string) (bool, error) {
	if pin != l.cfg.ResetPIN {
		return false, nil
	}
	st, err := l.load()
	if err != nil {
		return false, err
	}
	_, u, _ := st.User(userID)

	u.Points = 0
	u.ReviewCorrectSinceLastPoint = 0
	for _, p := range u.Words {
		p.Reset()
	}

	if err := l.save(st); err != nil {
		return false, err
	}
	return true, nil
}
