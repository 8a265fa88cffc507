package mysql

import (
	"fmt"
	"strings"

	"github.com/sendflowai/sendflow-go/pkg/storage"
)

// buildMemoryWhere builds the WHERE clause for a memory query.
func buildMemoryWhere(q *storage.MemoryQuery) (string, []interface{}) {
	conditions := []string{}
	args := []interface{}{}

	if q.LeadID != "" {
		conditions = append(conditions, "lead_id = ?")
		args = append(args, q.LeadID)
	}
	if q.OrgID != "" {
		conditions = append(conditions, "org_id = ?")
		args = append(args, q.OrgID)
	}
	if q.Type != "" {
		conditions = append(conditions, "memory_type = ?")
		args = append(args, q.Type)
	}

	if len(conditions) == 0 {
		return "", args
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}

// buildKnowledgeWhere builds the WHERE clause for a knowledge query.
func buildKnowledgeWhere(q *storage.KnowledgeQuery) (string, []interface{}) {
	conditions := []string{}
	args := []interface{}{}

	if q.OrgID != "" {
		conditions = append(conditions, "org_id = ?")
		args = append(args, q.OrgID)
	}
	if q.Type != "" {
		conditions = append(conditions, "content_type = ?")
		args = append(args, q.Type)
	}

	if len(conditions) == 0 {
		return "", args
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}

// limitClause renders LIMIT/OFFSET. A zero limit means unbounded.
func limitClause(limit, offset int) string {
	if limit <= 0 {
		if offset > 0 {
			// MySQL has no unbounded OFFSET form; use the documented idiom.
			return fmt.Sprintf("LIMIT 18446744073709551615 OFFSET %d", offset)
		}
		return ""
	}
	if offset > 0 {
		return fmt.Sprintf("LIMIT %d OFFSET %d", limit, offset)
	}
	return fmt.Sprintf("LIMIT %d", limit)
}

// placeholders renders n comma-separated ? placeholders for an IN clause.
func placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "?"
	}
	return strings.Join(parts, ", ")
}
