package valueobjects

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// AnalysisID identifies a chain analysis. The store generates it on creation
// and it never changes afterwards. Ids coming back from clients are treated as
// opaque strings: a durable backend may hold ids that are not UUIDs.
type AnalysisID struct {
	value string
}

// NewAnalysisID creates a new random AnalysisID
func NewAnalysisID() AnalysisID {
	return AnalysisID{value: uuid.New().String()}
}

// AnalysisIDFromString wraps an existing identifier
func AnalysisIDFromString(id string) (AnalysisID, error) {
	if strings.TrimSpace(id) == "" {
		return AnalysisID{}, errors.New("analysis ID cannot be empty")
	}
	return AnalysisID{value: id}, nil
}

// String returns the string representation of the AnalysisID
func (id AnalysisID) String() string {
	return id.value
}

// Equals checks if two AnalysisIDs are equal
func (id AnalysisID) Equals(other AnalysisID) bool {
	return id.value == other.value
}

// IsZero checks if the AnalysisID is the zero value
func (id AnalysisID) IsZero() bool {
	return id.value == ""
}
