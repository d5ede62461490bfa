package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// ReplicateID tags one dataset drawn from a structural causal model.
type ReplicateID ID

func (id ReplicateID) String() string { return ID(id).String() }

// NewReplicateID returns a fresh time-ordered replicate identifier.
func NewReplicateID() ReplicateID { return ReplicateID(NewID()) }

// ParseVariableName validates a variable identifier. Names are opaque but
// must be non-blank.
func ParseVariableName(s string) (string, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("%w: variable name cannot be empty", ErrValidation)
	}
	return s, nil
}
