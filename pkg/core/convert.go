package core

import (
	"github.com/sendflowai/sendflow-go/pkg/storage"
)

func toStorageMemory(rec *MemoryRecord) *storage.MemoryRecord {
	return &storage.MemoryRecord{
		ID:             rec.ID,
		OrgID:          rec.OrgID,
		LeadID:         rec.LeadID,
		Type:           string(rec.Type),
		Content:        rec.Content,
		Confidence:     rec.Confidence,
		RetrievalCount: rec.RetrievalCount,
		CreatedAt:      rec.CreatedAt,
		LastAccessed:   rec.LastAccessed,
	}
}

func fromStorageMemory(rec *storage.MemoryRecord) *MemoryRecord {
	return &MemoryRecord{
		ID:             rec.ID,
		OrgID:          rec.OrgID,
		LeadID:         rec.LeadID,
		Type:           MemoryType(rec.Type),
		Content:        rec.Content,
		Confidence:     rec.Confidence,
		RetrievalCount: rec.RetrievalCount,
		CreatedAt:      rec.CreatedAt,
		LastAccessed:   rec.LastAccessed,
	}
}

func fromStorageMemories(recs []*storage.MemoryRecord) []*MemoryRecord {
	out := make([]*MemoryRecord, 0, len(recs))
	for _, rec := range recs {
		out = append(out, fromStorageMemory(rec))
	}
	return out
}

func fromStorageKnowledge(item *storage.KnowledgeItem) *KnowledgeItem {
	return &KnowledgeItem{
		ID:        item.ID,
		OrgID:     item.OrgID,
		Title:     item.Title,
		Content:   item.Content,
		Type:      ContentType(item.Type),
		Metadata:  item.Metadata,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
}

func fromStorageKnowledgeItems(items []*storage.KnowledgeItem) []*KnowledgeItem {
	out := make([]*KnowledgeItem, 0, len(items))
	for _, item := range items {
		out = append(out, fromStorageKnowledge(item))
	}
	return out
}
