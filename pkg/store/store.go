// Package store persists solved plans so the HTTP server can list and
// reload past solves without recomputing them.
//
// Implementations:
//   - MemoryStore: in-process storage for tests and single-user CLI serve
//   - MongoStore: MongoDB-backed storage for shared deployments
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/errors"
	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/plan"
)

// PlanRecord is a stored plan with its solve inputs and metadata.
type PlanRecord struct {
	ID          string         `json:"id" bson:"_id"`
	CatalogHash string         `json:"catalog_hash" bson:"catalog_hash"`
	TargetID    string         `json:"target_id" bson:"target_id"`
	TargetRate  float64        `json:"target_rate" bson:"target_rate"`
	Selections  map[string]int `json:"selections,omitempty" bson:"selections,omitempty"`
	Plan        *plan.Plan     `json:"plan" bson:"plan"`
	CreatedAt   time.Time      `json:"created_at" bson:"created_at"`
}

// NewPlanRecord wraps a solved plan for storage.
func NewPlanRecord(catalogHash string, p *plan.Plan, selections map[string]int) *PlanRecord {
	return &PlanRecord{
		ID:          uuid.NewString(),
		CatalogHash: catalogHash,
		TargetID:    p.TargetID,
		TargetRate:  p.TargetRate,
		Selections:  selections,
		Plan:        p,
		CreatedAt:   time.Now(),
	}
}

// PlanStore is the interface for plan persistence backends.
type PlanStore interface {
	// Get retrieves a plan record by ID.
	Get(ctx context.Context, id string) (*PlanRecord, error)

	// Put stores a plan record.
	Put(ctx context.Context, rec *PlanRecord) error

	// Delete removes a plan record. Deleting a missing record is not an error.
	Delete(ctx context.Context, id string) error

	// List returns stored records sorted newest first, up to limit.
	// A non-positive limit returns all records.
	List(ctx context.Context, limit int) ([]*PlanRecord, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// notFound builds the standard missing-record error.
func notFound(id string) error {
	return errors.New(errors.ErrCodePlanNotFound, "plan record not found: %s", id)
}
