// internal/matching/models.go

package matching

import "time"

// SideStatus is the decision state of one side of a match.
type SideStatus string

const (
	SidePending  SideStatus = "pending"
	SideAccepted SideStatus = "accepted"
	SideRejected SideStatus = "rejected"
)

// EffectiveState is the derived lifecycle stage of a match.
type EffectiveState string

const (
	StateProposed     EffectiveState = "proposed"
	StateHalfAccepted EffectiveState = "half_accepted"
	StateActive       EffectiveState = "active"
	StateClosed       EffectiveState = "closed"
)

// Decision values accepted from users responding to a match.
const (
	DecisionAccepted = "accepted"
	DecisionRejected = "rejected"
)

// CreatedBySystem marks matches created by the automated generation run.
const CreatedBySystem = "system"

// Match is a proposed or realized pairing between two profiles. UserA is
// always the smaller id so every unordered pair has exactly one row.
type Match struct {
	ID                 int64      `json:"id" db:"id"`
	UserA              int64      `json:"user_a" db:"user_a"`
	UserB              int64      `json:"user_b" db:"user_b"`
	StatusA            SideStatus `json:"status_a" db:"status_a"`
	StatusB            SideStatus `json:"status_b" db:"status_b"`
	CompatibilityScore float64    `json:"compatibility_score" db:"compatibility_score"`
	Reasoning          string     `json:"reasoning" db:"reasoning"`
	CreatedBy          string     `json:"created_by" db:"created_by"`

	// Set exactly once when the activation notifications go out.
	ActivatedNotifiedAt *time.Time `json:"-" db:"activated_notified_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// EffectiveState derives the lifecycle stage from the two side statuses.
// Any rejection closes the match regardless of the other side.
func (m *Match) EffectiveState() EffectiveState {
	if m.StatusA == SideRejected || m.StatusB == SideRejected {
		return StateClosed
	}
	if m.StatusA == SideAccepted && m.StatusB == SideAccepted {
		return StateActive
	}
	if m.StatusA == SideAccepted || m.StatusB == SideAccepted {
		return StateHalfAccepted
	}
	return StateProposed
}

// Counterpart returns the other user of the match, or false if userID is
// not a participant.
func (m *Match) Counterpart(userID int64) (int64, bool) {
	switch userID {
	case m.UserA:
		return m.UserB, true
	case m.UserB:
		return m.UserA, true
	}
	return 0, false
}

// StatusOf returns the stored status for userID's side of the match.
// Non-participants read as pending.
func (m *Match) StatusOf(userID int64) SideStatus {
	switch userID {
	case m.UserA:
		return m.StatusA
	case m.UserB:
		return m.StatusB
	}
	return SidePending
}

// CanonicalPair orders two user ids smaller-first.
func CanonicalPair(x, y int64) (int64, int64) {
	if x > y {
		return y, x
	}
	return x, y
}

// PairKey identifies an unordered user pair in canonical order.
type PairKey struct {
	A int64
	B int64
}

// NewPairKey builds the canonical key for any argument order.
func NewPairKey(x, y int64) PairKey {
	a, b := CanonicalPair(x, y)
	return PairKey{A: a, B: b}
}

// MatchView is the API shape of a match, with the effective state and the
// counterpart resolved for the requesting user.
type MatchView struct {
	*Match
	EffectiveState EffectiveState `json:"effective_state"`
	CounterpartID  int64          `json:"counterpart_id,omitempty"`
}

// NewMatchView resolves the derived fields for the given viewer. A zero
// viewer id leaves the counterpart unset (admin listings).
func NewMatchView(m *Match, viewerID int64) *MatchView {
	view := &MatchView{Match: m, EffectiveState: m.EffectiveState()}
	if viewerID != 0 {
		if other, ok := m.Counterpart(viewerID); ok {
			view.CounterpartID = other
		}
	}
	return view
}

// RespondRequest carries a user's decision on their side of a match.
type RespondRequest struct {
	Decision string `json:"decision" validate:"required,oneof=accepted rejected"`
}

// ProposeMatchRequest is the admin payload for manual matchmaking.
type ProposeMatchRequest struct {
	UserAID int64 `json:"user_a_id" validate:"required,gt=0"`
	UserBID int64 `json:"user_b_id" validate:"required,gt=0"`
}

// GenerationRequest tunes a single generation run. Zero values fall back
// to the configured defaults.
type GenerationRequest struct {
	Threshold  float64 `json:"threshold" validate:"omitempty,gte=0,lte=1"`
	MaxMatches int     `json:"max_matches" validate:"omitempty,gt=0,lte=500"`
}

// GenerationSummary reports the outcome of one generation run.
type GenerationSummary struct {
	RunID           string        `json:"run_id"`
	ProfilesScanned int           `json:"profiles_scanned"`
	PairsConsidered int           `json:"pairs_considered"`
	PairsScored     int           `json:"pairs_scored"`
	PairsSkipped    int           `json:"pairs_skipped"`
	MatchesCreated  int           `json:"matches_created"`
	Failures        int           `json:"failures"`
	Duration        time.Duration `json:"duration"`
	StartedAt       time.Time     `json:"started_at"`
}
