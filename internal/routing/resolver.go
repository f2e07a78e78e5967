// Package routing assigns new complaints to the department responsible for their category.
package routing

import (
	"civictriage/backend/internal/models"
	"context"
	"fmt"
)

// Catalog is the part of the store the resolver reads from.
type Catalog interface {
	ListDepartments(ctx context.Context) ([]models.Department, error)
}

// Resolver picks a department for a category from a catalog snapshot.
type Resolver struct {
	Catalog Catalog
}

func NewResolver(c Catalog) *Resolver {
	return &Resolver{Catalog: c}
}

// Resolve returns the first department in catalog order whose category matches,
// or nil when no department handles the category. Only the first match is used;
// departments sharing a category are not balanced.
func (r *Resolver) Resolve(ctx context.Context, category models.Category) (*models.Department, error) {
	depts, err := r.Catalog.ListDepartments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load department catalog: %w", err)
	}
	return FirstMatch(depts, category), nil
}

// FirstMatch scans a snapshot for the first department registered for category.
func FirstMatch(depts []models.Department, category models.Category) *models.Department {
	for i := range depts {
		if depts[i].Category == category {
			d := depts[i]
			return &d
		}
	}
	return nil
}
