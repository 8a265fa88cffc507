package core

import (
	"context"
	"fmt"
	"time"

	"github.com/sendflowai/sendflow-go/pkg/cadence"
	"github.com/sendflowai/sendflow-go/pkg/storage"
)

// cadenceSignalLimit bounds how many recent memories feed the engagement
// estimate.
const cadenceSignalLimit = 20

// RecommendCadence estimates a lead's engagement from their recent
// memories and recommends when to reach out next. Reading memories for
// the estimate does not count as a retrieval.
func (c *Client) RecommendCadence(ctx context.Context, leadID string, opts ...RetrieveOption) (*cadence.Recommendation, error) {
	options := &RetrieveOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if leadID == "" {
		return nil, NewServiceError("RecommendCadence", fmt.Errorf("%w: lead id is required", ErrValidation))
	}

	recs, err := c.store.FindMemories(ctx, &storage.MemoryQuery{
		LeadID: leadID,
		OrgID:  options.OrgID,
		Limit:  cadenceSignalLimit,
	})
	if err != nil {
		return nil, NewServiceError("RecommendCadence", err)
	}

	signals := make([]cadence.Signal, 0, len(recs))
	for _, rec := range recs {
		signals = append(signals, cadence.Signal{
			Confidence: rec.Confidence,
			ObservedAt: rec.CreatedAt,
		})
	}

	return c.planner.Recommend(leadID, time.Now().UTC(), signals), nil
}
