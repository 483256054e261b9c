package domain

import "time"

// Timestamps records when a document was created and last changed.
// Embedded in mutable documents.
type Timestamps struct {
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// InitTimestamps sets both CreatedAt and UpdatedAt to now.
// Call this when creating a new document.
func (t *Timestamps) InitTimestamps() {
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
}

// Touch moves UpdatedAt to now. UpdatedAt always advances, so two writes
// in the same clock tick still order correctly.
func (t *Timestamps) Touch() {
	now := time.Now().UTC()
	if !now.After(t.UpdatedAt) {
		now = t.UpdatedAt.Add(time.Nanosecond)
	}
	t.UpdatedAt = now
}

// NewerThan reports whether t was written after other.
func (t Timestamps) NewerThan(other Timestamps) bool {
	return t.UpdatedAt.After(other.UpdatedAt)
}
