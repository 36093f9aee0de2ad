package messaging

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zawajhub/zawaj-backend/internal/matching"
)

// fakeMatches serves a single match and enforces the gate the way the
// real service does.
type fakeMatches struct {
	match *matching.Match
}

func (f *fakeMatches) CanSendMessage(_ context.Context, matchID, senderID int64) (*matching.Match, error) {
	if f.match == nil || f.match.ID != matchID {
		return nil, matching.ErrMatchNotFound
	}
	if _, ok := f.match.Counterpart(senderID); !ok {
		return nil, matching.ErrForbidden
	}
	if f.match.EffectiveState() != matching.StateActive {
		return nil, matching.ErrMatchNotActive
	}
	return f.match, nil
}

func (f *fakeMatches) GetMatch(_ context.Context, matchID, viewerID int64, isAdmin bool) (*matching.MatchView, error) {
	if f.match == nil || f.match.ID != matchID {
		return nil, matching.ErrMatchNotFound
	}
	if _, ok := f.match.Counterpart(viewerID); !ok && !isAdmin {
		return nil, matching.ErrForbidden
	}
	return matching.NewMatchView(f.match, viewerID), nil
}

func (f *fakeMatches) ProposeMatch(context.Context, int64, int64, string) (*matching.Match, error) {
	panic("not used")
}

func (f *fakeMatches) RespondToMatch(context.Context, int64, int64, string) (*matching.Match, error) {
	panic("not used")
}

func (f *fakeMatches) ListUserMatches(context.Context, int64) ([]*matching.MatchView, error) {
	panic("not used")
}

func (f *fakeMatches) ListMatches(context.Context, int, int) ([]*matching.MatchView, error) {
	panic("not used")
}

func (f *fakeMatches) RunGeneration(context.Context, *matching.GenerationRequest) (*matching.GenerationSummary, error) {
	panic("not used")
}

func (f *fakeMatches) Stats(context.Context) (map[matching.EffectiveState]int, error) {
	panic("not used")
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages []*Message
	nextID   int64
}

func (r *fakeMessageRepo) CreateMessage(_ context.Context, m *Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	m.ID = r.nextID
	m.CreatedAt = time.Now()
	stored := *m
	r.messages = append(r.messages, &stored)
	return nil
}

func (r *fakeMessageRepo) ListMessages(_ context.Context, matchID int64, limit, offset int) ([]*Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Message
	for _, m := range r.messages {
		if m.MatchID == matchID {
			out = append(out, m)
		}
	}
	return out, nil
}

type recordingNotifier struct {
	mu      sync.Mutex
	userIDs []int64
	types   []string
}

func (n *recordingNotifier) Notify(_ context.Context, userID int64, ntype, _, _ string, _ map[string]interface{}) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.userIDs = append(n.userIDs, userID)
	n.types = append(n.types, ntype)
	return nil
}

func activeMatch() *matching.Match {
	return &matching.Match{
		ID:      10,
		UserA:   1,
		UserB:   2,
		StatusA: matching.SideAccepted,
		StatusB: matching.SideAccepted,
	}
}

func TestSendMessageOnActiveMatch(t *testing.T) {
	repo := &fakeMessageRepo{}
	notifier := &recordingNotifier{}
	svc := NewService(repo, &fakeMatches{match: activeMatch()}, notifier, nil)

	msg, err := svc.SendMessage(context.Background(), 10, 1, "Assalamu alaikum")
	require.NoError(t, err)
	assert.Equal(t, int64(10), msg.MatchID)
	assert.Equal(t, int64(1), msg.SenderID)
	assert.NotZero(t, msg.ID)

	// The counterpart is notified, not the sender.
	require.Len(t, notifier.userIDs, 1)
	assert.Equal(t, int64(2), notifier.userIDs[0])
	assert.Equal(t, "new_message", notifier.types[0])
}

func TestSendMessageGateRejectsNonActive(t *testing.T) {
	states := []struct {
		name             string
		statusA, statusB matching.SideStatus
	}{
		{"proposed", matching.SidePending, matching.SidePending},
		{"half accepted", matching.SideAccepted, matching.SidePending},
		{"closed", matching.SideAccepted, matching.SideRejected},
	}

	for _, tt := range states {
		t.Run(tt.name, func(t *testing.T) {
			m := activeMatch()
			m.StatusA, m.StatusB = tt.statusA, tt.statusB

			repo := &fakeMessageRepo{}
			svc := NewService(repo, &fakeMatches{match: m}, &recordingNotifier{}, nil)

			_, err := svc.SendMessage(context.Background(), 10, 1, "hello")
			assert.ErrorIs(t, err, matching.ErrMatchNotActive)
			assert.Empty(t, repo.messages)
		})
	}
}

func TestSendMessageRejectsOutsiders(t *testing.T) {
	svc := NewService(&fakeMessageRepo{}, &fakeMatches{match: activeMatch()}, &recordingNotifier{}, nil)

	_, err := svc.SendMessage(context.Background(), 10, 42, "hello")
	assert.ErrorIs(t, err, matching.ErrForbidden)

	_, err = svc.SendMessage(context.Background(), 999, 1, "hello")
	assert.ErrorIs(t, err, matching.ErrMatchNotFound)
}

func TestListMessagesRequiresParticipation(t *testing.T) {
	repo := &fakeMessageRepo{}
	svc := NewService(repo, &fakeMatches{match: activeMatch()}, &recordingNotifier{}, nil)

	_, err := svc.SendMessage(context.Background(), 10, 1, "first")
	require.NoError(t, err)

	messages, err := svc.ListMessages(context.Background(), 10, 2, 0, 0)
	require.NoError(t, err)
	assert.Len(t, messages, 1)

	_, err = svc.ListMessages(context.Background(), 10, 42, 0, 0)
	assert.ErrorIs(t, err, matching.ErrForbidden)
}

func TestListMessagesAllowedAfterClose(t *testing.T) {
	repo := &fakeMessageRepo{}
	m := activeMatch()
	fake := &fakeMatches{match: m}
	svc := NewService(repo, fake, &recordingNotifier{}, nil)

	_, err := svc.SendMessage(context.Background(), 10, 1, "before close")
	require.NoError(t, err)

	// Close the match: history stays readable, sending does not.
	m.StatusB = matching.SideRejected

	messages, err := svc.ListMessages(context.Background(), 10, 1, 0, 0)
	require.NoError(t, err)
	assert.Len(t, messages, 1)

	_, err = svc.SendMessage(context.Background(), 10, 1, "after close")
	assert.ErrorIs(t, err, matching.ErrMatchNotActive)
}
