package application

import (
	"fmt"
	"strings"
	"time"
)

// TimestampLayout renders createdAt as a zone-less, millisecond-precision,
// lexicographically sortable wall-clock time (UTC).
const TimestampLayout = "2006-01-02T15:04:05.000"

// UserRequest is the payload accepted by create and update.
// Age is a pointer so that a missing value can be told apart from 0.
type UserRequest struct {
	Name  string `json:"name" validate:"notblank,max=50"`
	Email string `json:"email" validate:"notblank,max=50,email"`
	Age   *int   `json:"age" validate:"required,min=0,max=120"`
}

// UserResponse is the user representation returned to clients.
type UserResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Age       int       `json:"age"`
	CreatedAt Timestamp `json:"createdAt"`
}

// Timestamp marshals as TimestampLayout.
type Timestamp struct {
	time.Time
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.UTC().Format(TimestampLayout) + `"`), nil
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.Parse(TimestampLayout, s)
	if err != nil {
		return fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	t.Time = parsed
	return nil
}
