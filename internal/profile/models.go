// internal/profile/models.go

package profile

import (
	"time"

	"github.com/lib/pq"
)

// Closed attribute sets. The scorer depends on these values, so they are
// validated on write rather than stored as a free-form bag.
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

const (
	MadhabHanafi  = "hanafi"
	MadhabMaliki  = "maliki"
	MadhabShafii  = "shafii"
	MadhabHanbali = "hanbali"
	MadhabOther   = "other"
)

// Prayer frequency tiers, ordered from most to least observant.
const (
	PrayerAlways    = "always"
	PrayerUsually   = "usually"
	PrayerSometimes = "sometimes"
	PrayerRarely    = "rarely"
)

const (
	TimelineASAP         = "asap"
	TimelineWithin6Month = "within_6_months"
	TimelineWithin1Year  = "within_1_year"
	TimelineWithin2Year  = "within_2_years"
	TimelineFlexible     = "flexible"
)

// Profile is a user's matchable attribute record. The matching core reads
// snapshots of it and never writes profile data.
type Profile struct {
	ID          int64  `json:"id" db:"id"`
	DisplayName string `json:"display_name" db:"display_name"`
	Age         int    `json:"age" db:"age"`
	Gender      string `json:"gender" db:"gender"`

	// Religious practice
	Madhab          *string `json:"madhab,omitempty" db:"madhab"`
	PrayerFrequency *string `json:"prayer_frequency,omitempty" db:"prayer_frequency"`

	// Location
	Location          *string `json:"location,omitempty" db:"location"`
	WillingToRelocate bool    `json:"willing_to_relocate" db:"willing_to_relocate"`

	// Background
	Education  *string `json:"education,omitempty" db:"education"`
	Profession *string `json:"profession,omitempty" db:"profession"`

	// Intent
	MarriageTimeline *string `json:"marriage_timeline,omitempty" db:"marriage_timeline"`

	// Free-text interests, kept as an explicit set of strings
	Interests pq.StringArray `json:"interests" db:"interests"`

	// Desired-partner filters
	PreferredMinAge *int `json:"preferred_min_age,omitempty" db:"preferred_min_age"`
	PreferredMaxAge *int `json:"preferred_max_age,omitempty" db:"preferred_max_age"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsEligible reports whether the profile has the minimum fields required to
// participate in candidate generation.
func (p *Profile) IsEligible() bool {
	if p == nil {
		return false
	}
	if p.DisplayName == "" || p.Age < 18 {
		return false
	}
	return p.Gender == GenderMale || p.Gender == GenderFemale
}

// UpdateProfileRequest carries the user-editable profile fields.
type UpdateProfileRequest struct {
	DisplayName       *string  `json:"display_name,omitempty" validate:"omitempty,min=1,max=100"`
	Age               *int     `json:"age,omitempty" validate:"omitempty,gte=18,lte=100"`
	Gender            *string  `json:"gender,omitempty" validate:"omitempty,oneof=male female"`
	Madhab            *string  `json:"madhab,omitempty" validate:"omitempty,oneof=hanafi maliki shafii hanbali other"`
	PrayerFrequency   *string  `json:"prayer_frequency,omitempty" validate:"omitempty,oneof=always usually sometimes rarely"`
	Location          *string  `json:"location,omitempty" validate:"omitempty,max=200"`
	WillingToRelocate *bool    `json:"willing_to_relocate,omitempty"`
	Education         *string  `json:"education,omitempty" validate:"omitempty,max=100"`
	Profession        *string  `json:"profession,omitempty" validate:"omitempty,max=100"`
	MarriageTimeline  *string  `json:"marriage_timeline,omitempty" validate:"omitempty,oneof=asap within_6_months within_1_year within_2_years flexible"`
	Interests         []string `json:"interests,omitempty" validate:"omitempty,max=20,dive,min=1,max=50"`
	PreferredMinAge   *int     `json:"preferred_min_age,omitempty" validate:"omitempty,gte=18"`
	PreferredMaxAge   *int     `json:"preferred_max_age,omitempty" validate:"omitempty,lte=100"`
}
