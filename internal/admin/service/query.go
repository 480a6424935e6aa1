package service

import (
	"slices"

	"superadmin/internal/admin/models"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

var (
	userSorts    = []string{"name", "email", "is_active", "created_at"}
	projectSorts = []string{"name", "status", "is_active", "created_at", "updated_at"}
)

// NormalizeUserQuery clamps paging and falls back to newest-first for an
// unknown sort.
func NormalizeUserQuery(q models.ListQuery) models.ListQuery {
	q.Status = ""
	return normalize(q, userSorts)
}

func NormalizeProjectQuery(q models.ListQuery) models.ListQuery {
	q.Role = ""
	return normalize(q, projectSorts)
}

func normalize(q models.ListQuery, sorts []string) models.ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if !slices.Contains(sorts, q.Sort) {
		q.Sort = "created_at"
	}
	if q.Order != "asc" {
		q.Order = "desc"
	}
	if q.IsActive != "true" && q.IsActive != "false" {
		q.IsActive = ""
	}
	return q
}
