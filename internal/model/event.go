package model

import "time"

// ModelType tags the concrete entity kind an Event's snapshots decode to.
type ModelType string

const (
	ModelTypeAssignment ModelType = "Assignment"
	ModelTypeConfig     ModelType = "Config"
	ModelTypeDeployment ModelType = "Deployment"
	ModelTypeHost       ModelType = "Host"
	ModelTypeTarget     ModelType = "Target"
	ModelTypeTemplate   ModelType = "Template"
	ModelTypeWorkload   ModelType = "Workload"
)

// EventType is the kind of state transition an Event records.
type EventType string

const (
	EventTypeCreated EventType = "Created"
	EventTypeUpdated EventType = "Updated"
	EventTypeDeleted EventType = "Deleted"
)

// Event is a durable record of a state transition: at least one of
// PreviousModel/CurrentModel is present (never both absent), JSON-encoded
// so the reconciler can decode to the concrete type named by ModelType.
type Event struct {
	ID            string
	Timestamp     time.Time
	ConsumerID    string
	OperationID   string
	ModelType     ModelType
	EventType     EventType
	PreviousModel []byte
	CurrentModel  []byte
}

// MakeEventID derives the per-subscriber event row id from the operation
// that produced it and the subscriber it is destined for.
func MakeEventID(operationID, consumerID string) string {
	return operationID + "-" + consumerID
}
