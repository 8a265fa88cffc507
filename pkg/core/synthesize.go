package core

import (
	"context"
	"fmt"
	"time"
)

// SynthesizeContext builds the one-shot conversation context for a lead.
//
// All memories of each type are retrieved and reduced to a single content
// map per type, most recent record winning key conflicts. Every context
// section is always present; a type with no records contributes an empty
// map. The retrieval side effects of RetrieveMemories apply here too.
func (c *Client) SynthesizeContext(ctx context.Context, leadID string, opts ...RetrieveOption) (*LeadContext, error) {
	options := &RetrieveOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if leadID == "" {
		return nil, NewServiceError("SynthesizeContext", fmt.Errorf("%w: lead id is required", ErrValidation))
	}

	lc := &LeadContext{LeadID: leadID}

	for _, memoryType := range MemoryTypes() {
		recs, err := c.fetchMemories(ctx, leadID, options.OrgID, memoryType, "", 0)
		if err != nil {
			return nil, NewServiceError("SynthesizeContext", err)
		}

		c.touchMemories(ctx, recs)
		lc.Set(memoryType, c.reducer.Reduce(recs))
	}

	lc.SynthesisTimestamp = time.Now().UTC()

	c.logger.Debug("context synthesized", "lead_id", leadID)

	return lc, nil
}
