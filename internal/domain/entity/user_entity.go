package entity

import (
	"time"
)

// User is the aggregate root for user domain.
//
// ID is assigned by the store on first persistence and CreatedAt is stamped
// once by the service; neither changes afterwards.
type User struct {
	ID        int64
	Name      string
	Email     string
	Age       int
	CreatedAt time.Time
}
