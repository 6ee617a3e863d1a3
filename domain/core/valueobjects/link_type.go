package valueobjects

import "fmt"

// LinkType categorises one step of a recorded response chain
type LinkType string

const (
	LinkTypeThought  LinkType = "thought"
	LinkTypeEmotion  LinkType = "emotion"
	LinkTypeBehavior LinkType = "behavior"
	LinkTypePhysical LinkType = "physical"
)

// LinkTypes lists every accepted link category in display order
func LinkTypes() []LinkType {
	return []LinkType{LinkTypeThought, LinkTypeEmotion, LinkTypeBehavior, LinkTypePhysical}
}

// IsValid reports whether t is one of the known categories
func (t LinkType) IsValid() bool {
	switch t {
	case LinkTypeThought, LinkTypeEmotion, LinkTypeBehavior, LinkTypePhysical:
		return true
	}
	return false
}

// ParseLinkType converts a raw string into a LinkType
func ParseLinkType(s string) (LinkType, error) {
	t := LinkType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("unknown chain link type %q", s)
	}
	return t, nil
}
