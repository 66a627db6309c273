package progress

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/tapspeak/internal/srs"
	"github.com/example/tapspeak/pkg/models"
)

var today = models.Day("2024-01-10")

func newTestLedger(t *testing.T) (*Ledger, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	ledger, err := NewLedger(store, DefaultConfig())
	require.NoError(t, err)
	return ledger, store
}

func TestNewLedgerRejectsBadIntervals(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Intervals = srs.IntervalTable{5, 4, 3, 2, 1, 0, 0}
	_, err := NewLedger(NewMemoryStore(), cfg)
	assert.Error(t, err)
}

func TestGetProgressCreatesDefaults(t *testing.T) {
	ledger, store := newTestLedger(t)

	p, err := ledger.GetProgress("alice", "w1")
	require.NoError(t, err)
	assert.Equal(t, models.WordProgress{}, p)

	// The created user and word were persisted.
	data, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, data)
	st := models.Normalize(data)
	assert.Contains(t, st.Users, "alice")
	assert.Contains(t, st.Users["alice"].Words, "w1")
}

func TestEnroll(t *testing.T) {
	ledger, _ := newTestLedger(t)

	p, err := ledger.Enroll("alice", "w1", today)
	require.NoError(t, err)
	assert.True(t, p.Enrolled)
	assert.Equal(t, 0, p.Stage)
	assert.Equal(t, today, p.Due)
	assert.True(t, p.LoopUntil.IsZero())
	assert.Equal(t, 1, p.RememberedCount)
}

func TestEnrollIdempotentScheduling(t *testing.T) {
	ledger, _ := newTestLedger(t)

	first, err := ledger.Enroll("alice", "w1", today)
	require.NoError(t, err)
	second, err := ledger.Enroll("alice", "w1", today)
	require.NoError(t, err)

	assert.Equal(t, first.Stage, second.Stage)
	assert.Equal(t, first.Due, second.Due)
	assert.Equal(t, first.LoopUntil, second.LoopUntil)
	assert.Equal(t, first.Enrolled, second.Enrolled)
}

func TestEnrollRestartsSchedule(t *testing.T) {
	ledger, _ := newTestLedger(t)

	_, err := ledger.Enroll("alice", "w1", today)
	require.NoError(t, err)
	_, err = ledger.ApplyReviewResult("alice", "w1", true, today)
	require.NoError(t, err)
	_, err = ledger.ApplyReviewResult("alice", "w1", true, today.AddDays(1))
	require.NoError(t, err)

	// Re-enrolling always resets to stage 0, whatever the word reached.
	p, err := ledger.Enroll("alice", "w1", today.AddDays(2))
	require.NoError(t, err)
	assert.Equal(t, 0, p.Stage)
	assert.Equal(t, today.AddDays(2), p.Due)
}

func TestUnenrollKeepsStage(t *testing.T) {
	ledger, _ := newTestLedger(t)

	_, err := ledger.Enroll("alice", "w1", today)
	require.NoError(t, err)
	res, err := ledger.ApplyReviewResult("alice", "w1", true, today)
	require.NoError(t, err)
	require.Equal(t, 1, res.Stage)

	p, err := ledger.Unenroll("alice", "w1")
	require.NoError(t, err)
	assert.False(t, p.Enrolled)
	assert.True(t, p.Due.IsZero())
	assert.True(t, p.LoopUntil.IsZero())
	assert.Equal(t, 1, p.Stage)

	// Never due once unenrolled.
	due, err := ledger.DueWordIDs("alice", []string{"w1"}, today)
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestTouchSeen(t *testing.T) {
	ledger, _ := newTestLedger(t)

	n, err := ledger.TouchSeen("alice", "w1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = ledger.TouchSeen("alice", "w1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Advisory only: the word is not due and not enrolled.
	p, err := ledger.GetProgress("alice", "w1")
	require.NoError(t, err)
	assert.False(t, p.Enrolled)
}

// TestReviewScenario walks the full enroll → wrong → retry → correct loop on
// a single day.
func TestReviewScenario(t *testing.T) {
	ledger, _ := newTestLedger(t)

	p, err := ledger.Enroll("alice", "w1", today)
	require.NoError(t, err)
	require.True(t, p.Enrolled)
	require.Equal(t, 0, p.Stage)
	require.Equal(t, today, p.Due)

	// Wrong answer: stage stays floored at 0, word locks due for the day.
	res, err := ledger.ApplyReviewResult("alice", "w1", false, today)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Stage)
	assert.Equal(t, today, res.Due)

	due, err := ledger.DueWordIDs("alice", []string{"w1"}, today)
	require.NoError(t, err)
	assert.Equal(t, []string{"w1"}, due)

	// Correct answer: stage 1, rescheduled into the future, loop cleared.
	res, err = ledger.ApplyReviewResult("alice", "w1", true, today)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stage)
	assert.Equal(t, today.AddDays(srs.StandardIntervals[1]), res.Due)

	due, err = ledger.DueWordIDs("alice", []string{"w1"}, today)
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestLoopOverridesFutureDue(t *testing.T) {
	ledger, _ := newTestLedger(t)

	_, err := ledger.Enroll("alice", "w1", today)
	require.NoError(t, err)
	// Climb to a future due date, then fail on the due day.
	_, err = ledger.ApplyReviewResult("alice", "w1", true, today)
	require.NoError(t, err)
	res, err := ledger.ApplyReviewResult("alice", "w1", false, today)
	require.NoError(t, err)
	require.Equal(t, today, res.Due)

	due, err := ledger.DueWordIDs("alice", []string{"w1"}, today)
	require.NoError(t, err)
	assert.Equal(t, []string{"w1"}, due)
}

func TestDueWordIDsFiltersAndPreservesOrder(t *testing.T) {
	ledger, _ := newTestLedger(t)

	for _, w := range []string{"b", "a", "c"} {
		_, err := ledger.Enroll("alice", w, today)
		require.NoError(t, err)
	}
	// "c" is pushed into the future.
	_, err := ledger.ApplyReviewResult("alice", "c", true, today)
	require.NoError(t, err)

	// Unknown ids are silently excluded; input order is preserved.
	due, err := ledger.DueWordIDs("alice", []string{"b", "unknown", "a", "c"}, today)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, due)

	// Nil candidates fall back to tracked words in sorted order.
	due, err = ledger.DueWordIDs("alice", nil, today)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, due)
}

func TestPointsAccrualAcrossWords(t *testing.T) {
	ledger, _ := newTestLedger(t)

	words := []string{"w0", "w1", "w2", "w3", "w4", "w5", "w6", "w7", "w8", "w9"}
	total := 0
	for _, w := range words {
		res, err := ledger.ApplyReviewResult("alice", w, true, today)
		require.NoError(t, err)
		total += res.PointsGained
	}

	assert.Equal(t, 1, total)
	pts, err := ledger.Points("alice")
	require.NoError(t, err)
	assert.Equal(t, 1, pts)

	// The counter returned to zero: ten more corrects earn exactly one more.
	total = 0
	for _, w := range words {
		res, err := ledger.ApplyReviewResult("alice", w, true, today)
		require.NoError(t, err)
		total += res.PointsGained
	}
	assert.Equal(t, 1, total)
}

func TestResetUser(t *testing.T) {
	ledger, _ := newTestLedger(t)

	for i := 0; i < 10; i++ {
		_, err := ledger.ApplyReviewResult("alice", "w1", true, today)
		require.NoError(t, err)
	}
	_, err := ledger.Enroll("bob", "w2", today)
	require.NoError(t, err)

	// Wrong PIN: reported failure, nothing changes.
	ok, err := ledger.ResetUser("alice", "0000")
	require.NoError(t, err)
	assert.False(t, ok)
	pts, err := ledger.Points("alice")
	require.NoError(t, err)
	assert.Equal(t, 1, pts)

	// Correct PIN: points zeroed, words back to defaults, entries kept.
	ok, err = ledger.ResetUser("alice", DefaultResetPIN)
	require.NoError(t, err)
	assert.True(t, ok)

	pts, err = ledger.Points("alice")
	require.NoError(t, err)
	assert.Zero(t, pts)
	p, err := ledger.GetProgress("alice", "w1")
	require.NoError(t, err)
	assert.Equal(t, models.WordProgress{}, p)
	due, err := ledger.DueWordIDs("alice", nil, today)
	require.NoError(t, err)
	assert.Empty(t, due)

	// Other users are untouched.
	p, err = ledger.GetProgress("bob", "w2")
	require.NoError(t, err)
	assert.True(t, p.Enrolled)
}

func TestActiveUser(t *testing.T) {
	ledger, _ := newTestLedger(t)

	active, err := ledger.ActiveUser()
	require.NoError(t, err)
	assert.Equal(t, models.DefaultUserID, active)

	uid, err := ledger.SetActiveUser("alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", uid)

	// An empty user id resolves to the active user.
	_, err = ledger.Enroll("", "w1", today)
	require.NoError(t, err)
	due, err := ledger.DueWordIDs("alice", nil, today)
	require.NoError(t, err)
	assert.Equal(t, []string{"w1"}, due)
}

// failingStore simulates a transport outage.
type failingStore struct {
	loadErr error
	saveErr error
	data    []byte
}

func (s *failingStore) Load() ([]byte, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.data, nil
}

func (s *failingStore) Save(data []byte) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.data = data
	return nil
}

func TestStoreLoadFailurePropagates(t *testing.T) {
	store := &failingStore{loadErr: errors.New("store unavailable")}
	ledger, err := NewLedger(store, DefaultConfig())
	require.NoError(t, err)

	_, err = ledger.GetProgress("alice", "w1")
	assert.Error(t, err)
	_, err = ledger.Enroll("alice", "w1", today)
	assert.Error(t, err)
	_, err = ledger.DueWordIDs("alice", nil, today)
	assert.Error(t, err)
}

func TestStoreSaveFailureLeavesStateUnchanged(t *testing.T) {
	store := &failingStore{}
	ledger, err := NewLedger(store, DefaultConfig())
	require.NoError(t, err)

	_, err = ledger.Enroll("alice", "w1", today)
	require.NoError(t, err)

	store.saveErr = errors.New("disk full")
	_, err = ledger.ApplyReviewResult("alice", "w1", true, today)
	assert.Error(t, err)

	// Every call re-reads the snapshot, so the failed mutation left nothing
	// behind.
	store.saveErr = nil
	p, err := ledger.GetProgress("alice", "w1")
	require.NoError(t, err)
	assert.Equal(t, 0, p.Stage)
	assert.Equal(t, today, p.Due)
}
