// internal/matching/repository.go

package matching

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Storage-level sentinel errors. The service layer maps these onto its
// own error taxonomy.
var (
	errNoRowUpdated = errors.New("no row updated")
)

type Repository interface {
	CreateMatch(ctx context.Context, m *Match) error
	GetMatch(ctx context.Context, id int64) (*Match, error)
	GetMatchesForUser(ctx context.Context, userID int64) ([]*Match, error)
	ListMatches(ctx context.Context, limit, offset int) ([]*Match, error)
	ExistingPairs(ctx context.Context) (map[PairKey]struct{}, error)
	UpdateSideStatus(ctx context.Context, matchID int64, side string, status SideStatus) error
	MarkActivationNotified(ctx context.Context, matchID int64) (bool, error)
	CountByEffectiveState(ctx context.Context) (map[EffectiveState]int, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

const matchColumns = `
	id, user_a, user_b, status_a, status_b, compatibility_score,
	reasoning, created_by, activated_notified_at, created_at, updated_at
`

// CreateMatch inserts a match in canonical order. The unique constraint
// on (user_a, user_b) is the final arbiter against duplicate pairs.
func (r *postgresRepository) CreateMatch(ctx context.Context, m *Match) error {
	m.UserA, m.UserB = CanonicalPair(m.UserA, m.UserB)
	m.StatusA, m.StatusB = SidePending, SidePending

	query := `
		INSERT INTO matches (user_a, user_b, status_a, status_b, compatibility_score, reasoning, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowxContext(
		ctx, query,
		m.UserA, m.UserB, m.StatusA, m.StatusB,
		m.CompatibilityScore, m.Reasoning, m.CreatedBy,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicatePair
		}
		return fmt.Errorf("failed to create match: %w", err)
	}

	return nil
}

func (r *postgresRepository) GetMatch(ctx context.Context, id int64) (*Match, error) {
	var m Match
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`

	err := r.db.GetContext(ctx, &m, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrMatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match %d: %w", id, err)
	}

	return &m, nil
}

func (r *postgresRepository) GetMatchesForUser(ctx context.Context, userID int64) ([]*Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE user_a = $1 OR user_b = $1
		ORDER BY created_at DESC
	`

	var matches []*Match
	if err := r.db.SelectContext(ctx, &matches, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list matches for user %d: %w", userID, err)
	}

	return matches, nil
}

func (r *postgresRepository) ListMatches(ctx context.Context, limit, offset int) ([]*Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	var matches []*Match
	if err := r.db.SelectContext(ctx, &matches, query, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}

	return matches, nil
}

// ExistingPairs loads every canonical pair that already has a match,
// used by the generator to dedupe before scoring.
func (r *postgresRepository) ExistingPairs(ctx context.Context) (map[PairKey]struct{}, error) {
	rows, err := r.db.QueryxContext(ctx, `SELECT user_a, user_b FROM matches`)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing pairs: %w", err)
	}
	defer rows.Close()

	pairs := make(map[PairKey]struct{})
	for rows.Next() {
		var a, b int64
		if err := rows.Scan(&a, &b); err != nil {
			return nil, err
		}
		pairs[PairKey{A: a, B: b}] = struct{}{}
	}

	return pairs, rows.Err()
}

// UpdateSideStatus applies a side's decision as a compare-and-set: the
// write only lands while the side is still pending. Zero rows updated
// means the side already has a terminal decision.
func (r *postgresRepository) UpdateSideStatus(ctx context.Context, matchID int64, side string, status SideStatus) error {
	var query string
	switch side {
	case "a":
		query = `UPDATE matches SET status_a = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $1 AND status_a = 'pending'`
	case "b":
		query = `UPDATE matches SET status_b = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $1 AND status_b = 'pending'`
	default:
		return fmt.Errorf("invalid match side %q", side)
	}

	res, err := r.db.ExecContext(ctx, query, matchID, status)
	if err != nil {
		return fmt.Errorf("failed to update match %d side %s: %w", matchID, side, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errNoRowUpdated
	}

	return nil
}

// MarkActivationNotified claims the one-time activation flag. Only the
// caller that flips NULL to a timestamp gets true; concurrent completers
// see zero rows and skip the notifications.
func (r *postgresRepository) MarkActivationNotified(ctx context.Context, matchID int64) (bool, error) {
	query := `
		UPDATE matches SET activated_notified_at = $2
		WHERE id = $1 AND activated_notified_at IS NULL
	`

	res, err := r.db.ExecContext(ctx, query, matchID, time.Now())
	if err != nil {
		return false, fmt.Errorf("failed to mark activation notified for match %d: %w", matchID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func (r *postgresRepository) CountByEffectiveState(ctx context.Context) (map[EffectiveState]int, error) {
	query := `
		SELECT
			CASE
				WHEN status_a = 'rejected' OR status_b = 'rejected' THEN 'closed'
				WHEN status_a = 'accepted' AND status_b = 'accepted' THEN 'active'
				WHEN status_a = 'accepted' OR status_b = 'accepted' THEN 'half_accepted'
				ELSE 'proposed'
			END AS state,
			COUNT(*) AS total
		FROM matches
		GROUP BY state
	`

	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count matches by state: %w", err)
	}
	defer rows.Close()

	counts := make(map[EffectiveState]int)
	for rows.Next() {
		var state string
		var total int
		if err := rows.Scan(&state, &total); err != nil {
			return nil, err
		}
		counts[EffectiveState(state)] = total
	}

	return counts, rows.Err()
}
