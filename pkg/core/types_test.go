package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sendflowai/sendflow-go/pkg/core"
)

func TestMemoryType_Valid(t *testing.T) {
	for _, memoryType := range core.MemoryTypes() {
		assert.True(t, memoryType.Valid(), "type %s", memoryType)
	}

	assert.False(t, core.MemoryType("").Valid())
	assert.False(t, core.MemoryType("bogus").Valid())
	assert.False(t, core.MemoryType("Factual").Valid())
}

func TestMemoryType_ContextKey(t *testing.T) {
	tests := map[core.MemoryType]string{
		core.MemoryTypeFactual:    "factual_information",
		core.MemoryTypeEmotional:  "relationship_insights",
		core.MemoryTypeStrategic:  "strategic_recommendations",
		core.MemoryTypeContextual: "situational_awareness",
	}

	for memoryType, want := range tests {
		assert.Equal(t, want, memoryType.ContextKey())
	}
}

func TestContentType_Valid(t *testing.T) {
	for _, contentType := range core.ContentTypes() {
		assert.True(t, contentType.Valid(), "type %s", contentType)
	}

	assert.False(t, core.ContentType("video").Valid())
	assert.False(t, core.ContentType("").Valid())
}

func TestLeadContext_SetGet(t *testing.T) {
	lc := &core.LeadContext{LeadID: "lead-1"}

	content := map[string]interface{}{"budget": 450000}
	lc.Set(core.MemoryTypeFactual, content)

	assert.Equal(t, content, lc.Get(core.MemoryTypeFactual))
	assert.Equal(t, content, lc.FactualInformation)
	assert.Nil(t, lc.Get(core.MemoryTypeEmotional))
	assert.Nil(t, lc.Get(core.MemoryType("bogus")))
}
