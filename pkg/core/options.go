package core

// StoreOptions holds optional parameters for StoreMemory.
type StoreOptions struct {
	// OrgID scopes the memory to an organization.
	OrgID string

	// Confidence overrides the default confidence of 0.9.
	Confidence *float64
}

// StoreOption configures a StoreMemory call.
type StoreOption func(*StoreOptions)

// WithOrgID scopes the stored memory to an organization.
func WithOrgID(orgID string) StoreOption {
	return func(o *StoreOptions) {
		o.OrgID = orgID
	}
}

// WithConfidence sets the confidence of the stored memory.
// Must be within [0, 1].
func WithConfidence(confidence float64) StoreOption {
	return func(o *StoreOptions) {
		o.Confidence = &confidence
	}
}

// RetrieveOptions holds optional parameters for RetrieveMemories.
type RetrieveOptions struct {
	// OrgID scopes retrieval to an organization.
	OrgID string

	// Type restricts retrieval to a single memory type.
	Type MemoryType

	// Query biases retrieval toward a memory type when Type is unset.
	Query string

	// Limit bounds the number of returned records. Zero selects the
	// default of 5.
	Limit int
}

// RetrieveOption configures a RetrieveMemories call.
type RetrieveOption func(*RetrieveOptions)

// WithRetrieveOrgID scopes retrieval to an organization.
func WithRetrieveOrgID(orgID string) RetrieveOption {
	return func(o *RetrieveOptions) {
		o.OrgID = orgID
	}
}

// WithMemoryType restricts retrieval to a single memory type.
func WithMemoryType(memoryType MemoryType) RetrieveOption {
	return func(o *RetrieveOptions) {
		o.Type = memoryType
	}
}

// WithQuery biases retrieval toward the memory type inferred from the
// query text. Ignored when WithMemoryType is also given.
func WithQuery(query string) RetrieveOption {
	return func(o *RetrieveOptions) {
		o.Query = query
	}
}

// WithLimit bounds the number of returned records.
func WithLimit(limit int) RetrieveOption {
	return func(o *RetrieveOptions) {
		o.Limit = limit
	}
}

// KnowledgeOptions holds optional parameters for AddKnowledge.
type KnowledgeOptions struct {
	// Metadata is additional structured information stored with the item.
	Metadata map[string]interface{}
}

// KnowledgeOption configures an AddKnowledge call.
type KnowledgeOption func(*KnowledgeOptions)

// WithMetadata attaches structured metadata to the stored item.
func WithMetadata(metadata map[string]interface{}) KnowledgeOption {
	return func(o *KnowledgeOptions) {
		o.Metadata = metadata
	}
}

// SearchOptions holds optional parameters for SearchKnowledge.
type SearchOptions struct {
	// Type restricts the search to a single content type.
	Type ContentType

	// Limit bounds the number of returned items. Zero selects the
	// default of 5.
	Limit int
}

// SearchOption configures a SearchKnowledge call.
type SearchOption func(*SearchOptions)

// WithContentType restricts the search to a single content type.
func WithContentType(contentType ContentType) SearchOption {
	return func(o *SearchOptions) {
		o.Type = contentType
	}
}

// WithSearchLimit bounds the number of returned items.
func WithSearchLimit(limit int) SearchOption {
	return func(o *SearchOptions) {
		o.Limit = limit
	}
}
