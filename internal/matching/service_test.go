package matching

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zawajhub/zawaj-backend/internal/notification"
	"github.com/zawajhub/zawaj-backend/internal/profile"
)

// fakeRepo is an in-memory Repository with the same conditional-write
// semantics as the postgres implementation.
type fakeRepo struct {
	mu      sync.Mutex
	matches map[int64]*Match
	nextID  int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{matches: make(map[int64]*Match), nextID: 1}
}

func (r *fakeRepo) CreateMatch(_ context.Context, m *Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m.UserA, m.UserB = CanonicalPair(m.UserA, m.UserB)
	for _, existing := range r.matches {
		if existing.UserA == m.UserA && existing.UserB == m.UserB {
			return ErrDuplicatePair
		}
	}

	m.ID = r.nextID
	r.nextID++
	m.StatusA, m.StatusB = SidePending, SidePending
	m.CreatedAt = time.Now()
	m.UpdatedAt = m.CreatedAt

	stored := *m
	r.matches[m.ID] = &stored
	return nil
}

func (r *fakeRepo) GetMatch(_ context.Context, id int64) (*Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.matches[id]
	if !ok {
		return nil, ErrMatchNotFound
	}
	copied := *m
	return &copied, nil
}

func (r *fakeRepo) GetMatchesForUser(_ context.Context, userID int64) ([]*Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*Match
	for _, m := range r.matches {
		if m.UserA == userID || m.UserB == userID {
			copied := *m
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListMatches(_ context.Context, limit, offset int) ([]*Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*Match
	for _, m := range r.matches {
		copied := *m
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeRepo) ExistingPairs(_ context.Context) (map[PairKey]struct{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pairs := make(map[PairKey]struct{})
	for _, m := range r.matches {
		pairs[PairKey{A: m.UserA, B: m.UserB}] = struct{}{}
	}
	return pairs, nil
}

func (r *fakeRepo) UpdateSideStatus(_ context.Context, matchID int64, side string, status SideStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.matches[matchID]
	if !ok {
		return errNoRowUpdated
	}

	switch side {
	case "a":
		if m.StatusA != SidePending {
			return errNoRowUpdated
		}
		m.StatusA = status
	case "b":
		if m.StatusB != SidePending {
			return errNoRowUpdated
		}
		m.StatusB = status
	}
	m.UpdatedAt = time.Now()
	return nil
}

func (r *fakeRepo) MarkActivationNotified(_ context.Context, matchID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.matches[matchID]
	if !ok || m.ActivatedNotifiedAt != nil {
		return false, nil
	}
	now := time.Now()
	m.ActivatedNotifiedAt = &now
	return true, nil
}

func (r *fakeRepo) CountByEffectiveState(_ context.Context) (map[EffectiveState]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := make(map[EffectiveState]int)
	for _, m := range r.matches {
		counts[m.EffectiveState()]++
	}
	return counts, nil
}

// fakeProfiles is an in-memory profile.Repository.
type fakeProfiles struct {
	profiles map[int64]*profile.Profile
}

func newFakeProfiles(ps ...*profile.Profile) *fakeProfiles {
	f := &fakeProfiles{profiles: make(map[int64]*profile.Profile)}
	for _, p := range ps {
		f.profiles[p.ID] = p
	}
	return f
}

func (f *fakeProfiles) GetProfile(_ context.Context, userID int64) (*profile.Profile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return nil, profile.ErrProfileNotFound
	}
	return p, nil
}

func (f *fakeProfiles) GetProfiles(_ context.Context, userIDs []int64) ([]*profile.Profile, error) {
	var out []*profile.Profile
	for _, id := range userIDs {
		if p, ok := f.profiles[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProfiles) ListMatchable(_ context.Context) ([]*profile.Profile, error) {
	var out []*profile.Profile
	for _, p := range f.profiles {
		if p.IsEligible() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProfiles) UpdateProfile(_ context.Context, _ *profile.Profile) error {
	return nil
}

// recordingNotifier captures emitted notifications.
type recordingNotifier struct {
	mu      sync.Mutex
	records []record
}

type record struct {
	userID int64
	ntype  string
}

func (n *recordingNotifier) Notify(_ context.Context, userID int64, ntype, _, _ string, _ map[string]interface{}) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.records = append(n.records, record{userID: userID, ntype: ntype})
	return nil
}

func (n *recordingNotifier) byType(ntype string) []record {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []record
	for _, r := range n.records {
		if r.ntype == ntype {
			out = append(out, r)
		}
	}
	return out
}

// scorerFunc adapts a function to the Scorer interface.
type scorerFunc func(a, b *profile.Profile) (float64, string, error)

func (f scorerFunc) Score(_ context.Context, a, b *profile.Profile) (float64, string, error) {
	return f(a, b)
}

func fixedScorer(score float64) Scorer {
	return scorerFunc(func(_, _ *profile.Profile) (float64, string, error) {
		return score, "fixed", nil
	})
}

func newTestService(repo Repository, profiles profile.Repository, scorer Scorer, notifier Notifier) Service {
	return NewService(repo, profiles, scorer, notifier, Config{
		CompatibilityThreshold: 0.3,
		MaxMatchesPerRun:       50,
	})
}

func eligible(id int64, gender string) *profile.Profile {
	return &profile.Profile{ID: id, DisplayName: "User", Age: 28, Gender: gender}
}

func TestProposeMatchCanonicalOrdering(t *testing.T) {
	repo := newFakeRepo()
	notifier := &recordingNotifier{}
	svc := newTestService(repo, newFakeProfiles(
		eligible(7, profile.GenderMale),
		eligible(3, profile.GenderFemale),
	), fixedScorer(0.8), notifier)

	m, err := svc.ProposeMatch(context.Background(), 7, 3, "admin:1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), m.UserA)
	assert.Equal(t, int64(7), m.UserB)
	assert.Equal(t, StateProposed, m.EffectiveState())
	assert.InDelta(t, 0.8, m.CompatibilityScore, 0.0001)

	// Proposing the reverse pair hits the same canonical row.
	_, err = svc.ProposeMatch(context.Background(), 3, 7, "admin:1")
	assert.ErrorIs(t, err, ErrDuplicatePair)

	// Exactly one new_match notification per side.
	newMatch := notifier.byType(notification.TypeNewMatch)
	require.Len(t, newMatch, 2)
	assert.ElementsMatch(t, []int64{3, 7}, []int64{newMatch[0].userID, newMatch[1].userID})
}

func TestProposeMatchInvalidPairs(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, newFakeProfiles(
		eligible(1, profile.GenderMale),
		eligible(2, profile.GenderFemale),
		&profile.Profile{ID: 9, Age: 30, Gender: profile.GenderFemale},
	), fixedScorer(0.8), &recordingNotifier{})

	_, err := svc.ProposeMatch(context.Background(), 1, 1, "admin:1")
	assert.ErrorIs(t, err, ErrInvalidPair)

	_, err = svc.ProposeMatch(context.Background(), 1, 42, "admin:1")
	assert.ErrorIs(t, err, ErrInvalidPair)

	// Profile 9 has no display name, so it is not eligible.
	_, err = svc.ProposeMatch(context.Background(), 1, 9, "admin:1")
	assert.ErrorIs(t, err, ErrInvalidPair)
}

func TestMutualAcceptFlow(t *testing.T) {
	repo := newFakeRepo()
	notifier := &recordingNotifier{}
	svc := newTestService(repo, newFakeProfiles(
		eligible(1, profile.GenderMale),
		eligible(2, profile.GenderFemale),
	), fixedScorer(0.8), notifier)

	m, err := svc.ProposeMatch(context.Background(), 1, 2, CreatedBySystem)
	require.NoError(t, err)

	// First accept: half accepted, gate stays closed.
	m, err = svc.RespondToMatch(context.Background(), m.ID, 1, DecisionAccepted)
	require.NoError(t, err)
	assert.Equal(t, StateHalfAccepted, m.EffectiveState())

	_, err = svc.CanSendMessage(context.Background(), m.ID, 1)
	assert.ErrorIs(t, err, ErrMatchNotActive)

	// Second accept: active, gate opens.
	m, err = svc.RespondToMatch(context.Background(), m.ID, 2, DecisionAccepted)
	require.NoError(t, err)
	assert.Equal(t, StateActive, m.EffectiveState())

	_, err = svc.CanSendMessage(context.Background(), m.ID, 1)
	assert.NoError(t, err)
	_, err = svc.CanSendMessage(context.Background(), m.ID, 2)
	assert.NoError(t, err)

	// Exactly one match_accepted notification per side.
	accepted := notifier.byType(notification.TypeMatchAccepted)
	require.Len(t, accepted, 2)
	assert.ElementsMatch(t, []int64{1, 2}, []int64{accepted[0].userID, accepted[1].userID})
}

func TestRejectionFlow(t *testing.T) {
	repo := newFakeRepo()
	notifier := &recordingNotifier{}
	svc := newTestService(repo, newFakeProfiles(
		eligible(1, profile.GenderMale),
		eligible(2, profile.GenderFemale),
	), fixedScorer(0.8), notifier)

	m, err := svc.ProposeMatch(context.Background(), 1, 2, CreatedBySystem)
	require.NoError(t, err)

	m, err = svc.RespondToMatch(context.Background(), m.ID, 2, DecisionRejected)
	require.NoError(t, err)
	assert.Equal(t, StateClosed, m.EffectiveState())

	// Only the counterpart is told; the rejecting side is not.
	rejected := notifier.byType(notification.TypeMatchRejected)
	require.Len(t, rejected, 1)
	assert.Equal(t, int64(1), rejected[0].userID)

	// A later accept by the other side cannot resurrect the match.
	m, err = svc.RespondToMatch(context.Background(), m.ID, 1, DecisionAccepted)
	require.NoError(t, err)
	assert.Equal(t, StateClosed, m.EffectiveState())
	assert.Empty(t, notifier.byType(notification.TypeMatchAccepted))

	_, err = svc.CanSendMessage(context.Background(), m.ID, 1)
	assert.ErrorIs(t, err, ErrMatchNotActive)
}

func TestRejectionOfClosedMatchStaysSilent(t *testing.T) {
	repo := newFakeRepo()
	notifier := &recordingNotifier{}
	svc := newTestService(repo, newFakeProfiles(
		eligible(1, profile.GenderMale),
		eligible(2, profile.GenderFemale),
	), fixedScorer(0.8), notifier)

	m, err := svc.ProposeMatch(context.Background(), 1, 2, CreatedBySystem)
	require.NoError(t, err)

	_, err = svc.RespondToMatch(context.Background(), m.ID, 1, DecisionRejected)
	require.NoError(t, err)

	// The second rejection succeeds but the match was already closed,
	// so no further match_rejected notification is emitted.
	m, err = svc.RespondToMatch(context.Background(), m.ID, 2, DecisionRejected)
	require.NoError(t, err)
	assert.Equal(t, StateClosed, m.EffectiveState())

	rejected := notifier.byType(notification.TypeMatchRejected)
	require.Len(t, rejected, 1)
	assert.Equal(t, int64(2), rejected[0].userID)
}

func TestRespondTwiceFailsLoudly(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, newFakeProfiles(
		eligible(1, profile.GenderMale),
		eligible(2, profile.GenderFemale),
	), fixedScorer(0.8), &recordingNotifier{})

	m, err := svc.ProposeMatch(context.Background(), 1, 2, CreatedBySystem)
	require.NoError(t, err)

	_, err = svc.RespondToMatch(context.Background(), m.ID, 1, DecisionAccepted)
	require.NoError(t, err)

	// Same side again, any decision: conflict, state unchanged.
	_, err = svc.RespondToMatch(context.Background(), m.ID, 1, DecisionRejected)
	assert.ErrorIs(t, err, ErrAlreadyResponded)

	stored, err := repo.GetMatch(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, SideAccepted, stored.StatusA)
	assert.Equal(t, StateHalfAccepted, stored.EffectiveState())
}

func TestRespondErrors(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, newFakeProfiles(
		eligible(1, profile.GenderMale),
		eligible(2, profile.GenderFemale),
	), fixedScorer(0.8), &recordingNotifier{})

	m, err := svc.ProposeMatch(context.Background(), 1, 2, CreatedBySystem)
	require.NoError(t, err)

	_, err = svc.RespondToMatch(context.Background(), 999, 1, DecisionAccepted)
	assert.ErrorIs(t, err, ErrMatchNotFound)

	_, err = svc.RespondToMatch(context.Background(), m.ID, 42, DecisionAccepted)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.RespondToMatch(context.Background(), m.ID, 1, "maybe")
	assert.ErrorIs(t, err, ErrInvalidDecision)
}

func TestActivationNotificationDeduped(t *testing.T) {
	repo := newFakeRepo()
	notifier := &recordingNotifier{}
	svcIface := newTestService(repo, newFakeProfiles(
		eligible(1, profile.GenderMale),
		eligible(2, profile.GenderFemale),
	), fixedScorer(0.8), notifier)
	svc := svcIface.(*service)

	m, err := svc.ProposeMatch(context.Background(), 1, 2, CreatedBySystem)
	require.NoError(t, err)
	_, err = svc.RespondToMatch(context.Background(), m.ID, 1, DecisionAccepted)
	require.NoError(t, err)
	_, err = svc.RespondToMatch(context.Background(), m.ID, 2, DecisionAccepted)
	require.NoError(t, err)

	// Simulate both completers observing the active pair: the second
	// activation attempt must not emit again.
	m, err = repo.GetMatch(context.Background(), m.ID)
	require.NoError(t, err)
	svc.notifyActivation(context.Background(), m)

	assert.Len(t, notifier.byType(notification.TypeMatchAccepted), 2)
}

func TestGetMatchAuthorization(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, newFakeProfiles(
		eligible(1, profile.GenderMale),
		eligible(2, profile.GenderFemale),
	), fixedScorer(0.8), &recordingNotifier{})

	m, err := svc.ProposeMatch(context.Background(), 1, 2, CreatedBySystem)
	require.NoError(t, err)

	view, err := svc.GetMatch(context.Background(), m.ID, 1, false)
	require.NoError(t, err)
	assert.Equal(t, int64(2), view.CounterpartID)
	assert.Equal(t, StateProposed, view.EffectiveState)

	_, err = svc.GetMatch(context.Background(), m.ID, 42, false)
	assert.ErrorIs(t, err, ErrForbidden)

	// Admins may inspect any match.
	_, err = svc.GetMatch(context.Background(), m.ID, 42, true)
	assert.NoError(t, err)
}

func TestCanSendMessageErrors(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, newFakeProfiles(
		eligible(1, profile.GenderMale),
		eligible(2, profile.GenderFemale),
	), fixedScorer(0.8), &recordingNotifier{})

	m, err := svc.ProposeMatch(context.Background(), 1, 2, CreatedBySystem)
	require.NoError(t, err)

	_, err = svc.CanSendMessage(context.Background(), 999, 1)
	assert.ErrorIs(t, err, ErrMatchNotFound)

	_, err = svc.CanSendMessage(context.Background(), m.ID, 42)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.CanSendMessage(context.Background(), m.ID, 1)
	assert.ErrorIs(t, err, ErrMatchNotActive)
}

func TestNotifierFailureDoesNotFailMatchCreation(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, newFakeProfiles(
		eligible(1, profile.GenderMale),
		eligible(2, profile.GenderFemale),
	), fixedScorer(0.8), failingNotifier{})

	m, err := svc.ProposeMatch(context.Background(), 1, 2, CreatedBySystem)
	require.NoError(t, err)

	stored, err := repo.GetMatch(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, StateProposed, stored.EffectiveState())
}

type failingNotifier struct{}

func (failingNotifier) Notify(context.Context, int64, string, string, string, map[string]interface{}) error {
	return errors.New("sink unavailable")
}
