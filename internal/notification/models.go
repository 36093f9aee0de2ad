// internal/notification/models.go

package notification

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Notification types
const (
	TypeNewMatch      = "new_match"
	TypeMatchAccepted = "match_accepted"
	TypeMatchRejected = "match_rejected"
	TypeNewMessage    = "new_message"
)

// NotificationData is the structured payload stored alongside a
// notification, e.g. {"match_id": 42}.
type NotificationData map[string]interface{}

// Value implements driver.Valuer for JSONB storage
func (d NotificationData) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	return json.Marshal(d)
}

// Scan implements sql.Scanner for JSONB retrieval
func (d *NotificationData) Scan(value interface{}) error {
	if value == nil {
		*d = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to scan notification data")
	}

	return json.Unmarshal(bytes, d)
}

// Notification is an addressed, user-facing alert created as a side
// effect of a match transition or a new message.
type Notification struct {
	ID        int64            `json:"id" db:"id"`
	UserID    int64            `json:"user_id" db:"user_id"`
	Type      string           `json:"type" db:"type"`
	Title     string           `json:"title" db:"title"`
	Message   string           `json:"message" db:"message"`
	Data      NotificationData `json:"data,omitempty" db:"data"`
	Read      bool             `json:"read" db:"read"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}
