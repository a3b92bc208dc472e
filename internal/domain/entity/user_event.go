package entity

// Operation names a user lifecycle transition that is announced to other services.
type Operation string

const (
	OperationCreated Operation = "CREATED"
	OperationDeleted Operation = "DELETED"
)

// UserEvent is the notification envelope put on the event channel.
// It is never persisted.
type UserEvent struct {
	Operation Operation `json:"operation"`
	Email     string    `json:"email"`
}

// Valid reports whether the event carries a known operation and a recipient.
func (e UserEvent) Valid() bool {
	return (e.Operation == OperationCreated || e.Operation == OperationDeleted) && e.Email != ""
}
