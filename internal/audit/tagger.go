// Package audit tags state-mutating operations with action metadata and
// forwards records for allowed invocations to the audit log.
package audit

import "fmt"

// Tag is the static metadata attached to a mutating operation.
type Tag struct {
	Entity      string
	Action      string
	Description string
}

// Tagger maps operation identifiers to their audit tags. Like the
// requirement registry it is populated once at startup and read-only
// afterwards; Tag performs no I/O.
type Tagger struct {
	tags map[string]Tag
}

// NewTagger constructs an empty Tagger.
func NewTagger() *Tagger {
	return &Tagger{tags: make(map[string]Tag)}
}

// Register records the tag for an operation.
func (t *Tagger) Register(operationID string, tag Tag) error {
	if operationID == "" {
		return fmt.Errorf("audit: operation id required")
	}
	if tag.Entity == "" || tag.Action == "" {
		return fmt.Errorf("audit: tag for %q requires entity and action", operationID)
	}
	if _, ok := t.tags[operationID]; ok {
		return fmt.Errorf("audit: operation %q already tagged", operationID)
	}
	t.tags[operationID] = tag
	return nil
}

// MustRegister is Register for startup wiring paths.
func (t *Tagger) MustRegister(operationID string, tag Tag) {
	if err := t.Register(operationID, tag); err != nil {
		panic(err)
	}
}

// Tag returns the tag declared for an operation, if any.
func (t *Tagger) Tag(operationID string) (Tag, bool) {
	tag, ok := t.tags[operationID]
	return tag, ok
}
