// Package core provides the SendFlow client for lead memory storage,
// context synthesis, and knowledge base lookup.
package core

import "time"

// MemoryType categorizes a lead memory record.
//
// The set is closed: exactly these four types exist, and the context
// synthesizer reduces each one to a fixed key of the LeadContext. Adding a
// type requires versioning the synthesis output shape.
type MemoryType string

const (
	// MemoryTypeFactual holds verifiable lead facts (budget, location,
	// pre-approval status, property requirements).
	MemoryTypeFactual MemoryType = "factual"

	// MemoryTypeEmotional holds rapport and sentiment observations.
	MemoryTypeEmotional MemoryType = "emotional"

	// MemoryTypeStrategic holds next-step and negotiation guidance.
	MemoryTypeStrategic MemoryType = "strategic"

	// MemoryTypeContextual holds situational context (market conditions,
	// timeline pressure, competing offers).
	MemoryTypeContextual MemoryType = "contextual"
)

// MemoryTypes returns the four recognized memory types in a fixed order.
func MemoryTypes() []MemoryType {
	return []MemoryType{
		MemoryTypeFactual,
		MemoryTypeEmotional,
		MemoryTypeStrategic,
		MemoryTypeContextual,
	}
}

// Valid reports whether t is one of the four recognized memory types.
func (t MemoryType) Valid() bool {
	switch t {
	case MemoryTypeFactual, MemoryTypeEmotional, MemoryTypeStrategic, MemoryTypeContextual:
		return true
	}
	return false
}

// String returns the string representation of the memory type.
func (t MemoryType) String() string {
	return string(t)
}

// ContextKey returns the fixed LeadContext key this type reduces into.
func (t MemoryType) ContextKey() string {
	switch t {
	case MemoryTypeFactual:
		return "factual_information"
	case MemoryTypeEmotional:
		return "relationship_insights"
	case MemoryTypeStrategic:
		return "strategic_recommendations"
	case MemoryTypeContextual:
		return "situational_awareness"
	}
	return ""
}

// MemoryRecord is a single typed memory stored for a lead.
//
// Records are append-only: once written, nothing changes except the two
// retrieval bookkeeping fields (RetrievalCount, LastAccessed), which are
// updated as an observable side effect of every retrieval.
type MemoryRecord struct {
	// ID is the unique identifier of the record, assigned at creation.
	ID int64 `json:"id"`

	// OrgID identifies the organization the lead belongs to.
	OrgID string `json:"org_id,omitempty"`

	// LeadID identifies the lead this memory belongs to.
	LeadID string `json:"lead_id"`

	// Type is one of the four recognized memory types.
	Type MemoryType `json:"memory_type"`

	// Content is an open structured payload. Its schema varies by Type and
	// is the writer's responsibility; the store does not validate it.
	Content map[string]interface{} `json:"content"`

	// Confidence is the store's belief this record is accurate, in [0,1].
	Confidence float64 `json:"confidence_level"`

	// RetrievalCount is incremented every time the record is returned by a
	// retrieval. Best-effort under concurrency: it is a usage metric, not a
	// correctness-critical value.
	RetrievalCount int `json:"retrieval_count"`

	// CreatedAt is the immutable creation timestamp.
	CreatedAt time.Time `json:"created_at"`

	// LastAccessed is updated on every successful retrieval.
	LastAccessed time.Time `json:"last_accessed"`
}

// LeadContext is the synthesized view of everything stored about a lead.
//
// It is derived, never persisted, and recomputed on every request. The four
// content keys are fixed: downstream agents index by them, so each is always
// present (a non-nil map), even when no records of that type exist.
type LeadContext struct {
	LeadID string `json:"lead_id"`

	FactualInformation       map[string]interface{} `json:"factual_information"`
	RelationshipInsights     map[string]interface{} `json:"relationship_insights"`
	StrategicRecommendations map[string]interface{} `json:"strategic_recommendations"`
	SituationalAwareness     map[string]interface{} `json:"situational_awareness"`

	// SynthesisTimestamp is the time the context was computed.
	SynthesisTimestamp time.Time `json:"synthesis_timestamp"`
}

// Set stores the reduced content for a memory type on its fixed key.
func (c *LeadContext) Set(t MemoryType, content map[string]interface{}) {
	switch t {
	case MemoryTypeFactual:
		c.FactualInformation = content
	case MemoryTypeEmotional:
		c.RelationshipInsights = content
	case MemoryTypeStrategic:
		c.StrategicRecommendations = content
	case MemoryTypeContextual:
		c.SituationalAwareness = content
	}
}

// Get returns the reduced content stored for a memory type.
func (c *LeadContext) Get(t MemoryType) map[string]interface{} {
	switch t {
	case MemoryTypeFactual:
		return c.FactualInformation
	case MemoryTypeEmotional:
		return c.RelationshipInsights
	case MemoryTypeStrategic:
		return c.StrategicRecommendations
	case MemoryTypeContextual:
		return c.SituationalAwareness
	}
	return nil
}

// ContentType categorizes a knowledge base item.
type ContentType string

const (
	// ContentTypeDocument is reference material (guides, listings, contracts).
	ContentTypeDocument ContentType = "document"

	// ContentTypeScript is call and objection-handling scripts.
	ContentTypeScript ContentType = "script"

	// ContentTypeFAQ is question/answer grounding content.
	ContentTypeFAQ ContentType = "faq"
)

// ContentTypes returns the recognized content types in a fixed order.
func ContentTypes() []ContentType {
	return []ContentType{ContentTypeDocument, ContentTypeScript, ContentTypeFAQ}
}

// Valid reports whether t is a recognized content type.
func (t ContentType) Valid() bool {
	switch t {
	case ContentTypeDocument, ContentTypeScript, ContentTypeFAQ:
		return true
	}
	return false
}

// String returns the string representation of the content type.
func (t ContentType) String() string {
	return string(t)
}

// KnowledgeItem is a titled content item used to ground agent responses.
// Items are keyed by organization, not by lead.
type KnowledgeItem struct {
	// ID is the unique identifier of the item.
	ID int64 `json:"id"`

	// OrgID identifies the organization that owns this item.
	OrgID string `json:"org_id"`

	// Title is the human-readable item title.
	Title string `json:"title"`

	// Content is the item body.
	Content string `json:"content"`

	// Type is one of document, script, or faq.
	Type ContentType `json:"content_type"`

	// Metadata contains additional structured information (optional).
	Metadata map[string]interface{} `json:"metadata,omitempty"`

	// CreatedAt is when the item was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the item was last updated.
	UpdatedAt time.Time `json:"updated_at"`
}
