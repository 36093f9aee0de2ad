// internal/profile/repository.go

package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var ErrProfileNotFound = errors.New("profile not found")

type Repository interface {
	GetProfile(ctx context.Context, userID int64) (*Profile, error)
	GetProfiles(ctx context.Context, userIDs []int64) ([]*Profile, error)
	ListMatchable(ctx context.Context) ([]*Profile, error)
	UpdateProfile(ctx context.Context, p *Profile) error
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

const profileColumns = `
	id, display_name, age, gender, madhab, prayer_frequency,
	location, willing_to_relocate, education, profession,
	marriage_timeline, interests, preferred_min_age, preferred_max_age,
	created_at, updated_at
`

func (r *postgresRepository) GetProfile(ctx context.Context, userID int64) (*Profile, error) {
	var p Profile
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`

	err := r.db.GetContext(ctx, &p, query, userID)
	if err == sql.ErrNoRows {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile %d: %w", userID, err)
	}

	return &p, nil
}

func (r *postgresRepository) GetProfiles(ctx context.Context, userIDs []int64) ([]*Profile, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = ANY($1)`

	var profiles []*Profile
	if err := r.db.SelectContext(ctx, &profiles, query, pq.Array(userIDs)); err != nil {
		return nil, fmt.Errorf("failed to get profiles: %w", err)
	}

	return profiles, nil
}

// ListMatchable returns a snapshot of every profile that could take part in
// candidate generation. Eligibility is still re-checked in the generator.
func (r *postgresRepository) ListMatchable(ctx context.Context) ([]*Profile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE display_name <> '' AND age >= 18 AND gender IN ('male', 'female')
		ORDER BY id
	`

	var profiles []*Profile
	if err := r.db.SelectContext(ctx, &profiles, query); err != nil {
		return nil, fmt.Errorf("failed to list matchable profiles: %w", err)
	}

	return profiles, nil
}

func (r *postgresRepository) UpdateProfile(ctx context.Context, p *Profile) error {
	query := `
		UPDATE profiles
		SET display_name = $2, age = $3, gender = $4, madhab = $5,
		    prayer_frequency = $6, location = $7, willing_to_relocate = $8,
		    education = $9, profession = $10, marriage_timeline = $11,
		    interests = $12, preferred_min_age = $13, preferred_max_age = $14,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRowxContext(
		ctx, query,
		p.ID, p.DisplayName, p.Age, p.Gender, p.Madhab,
		p.PrayerFrequency, p.Location, p.WillingToRelocate,
		p.Education, p.Profession, p.MarriageTimeline,
		p.Interests, p.PreferredMinAge, p.PreferredMaxAge,
	).Scan(&p.UpdatedAt)

	if err == sql.ErrNoRows {
		return ErrProfileNotFound
	}
	return err
}
