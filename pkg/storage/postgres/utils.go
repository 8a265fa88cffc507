package postgres

import (
	"fmt"
	"strings"

	"github.com/sendflowai/sendflow-go/pkg/storage"
)

// buildMemoryWhere builds a WHERE clause starting from $1.
func buildMemoryWhere(q *storage.MemoryQuery) (string, []interface{}) {
	conditions := []string{}
	args := []interface{}{}
	argIndex := 1

	if q.LeadID != "" {
		conditions = append(conditions, fmt.Sprintf("lead_id = $%d", argIndex))
		args = append(args, q.LeadID)
		argIndex++
	}
	if q.OrgID != "" {
		conditions = append(conditions, fmt.Sprintf("org_id = $%d", argIndex))
		args = append(args, q.OrgID)
		argIndex++
	}
	if q.Type != "" {
		conditions = append(conditions, fmt.Sprintf("memory_type = $%d", argIndex))
		args = append(args, q.Type)
	}

	if len(conditions) == 0 {
		return "", args
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}

// buildKnowledgeWhere builds a WHERE clause starting from $1.
func buildKnowledgeWhere(q *storage.KnowledgeQuery) (string, []interface{}) {
	conditions := []string{}
	args := []interface{}{}
	argIndex := 1

	if q.OrgID != "" {
		conditions = append(conditions, fmt.Sprintf("org_id = $%d", argIndex))
		args = append(args, q.OrgID)
		argIndex++
	}
	if q.Type != "" {
		conditions = append(conditions, fmt.Sprintf("content_type = $%d", argIndex))
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
			return fmt.Sprintf("OFFSET %d", offset)
		}
		return ""
	}
	if offset > 0 {
		return fmt.Sprintf("LIMIT %d OFFSET %d", limit, offset)
	}
	return fmt.Sprintf("LIMIT %d", limit)
}

// placeholders renders n comma-separated $k placeholders starting at start.
func placeholders(n, start int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(parts, ", ")
}
