// Package storage groups data access by domain behind one aggregate
// repository with a scoped-transaction helper.
package storage

import (
	"context"

	"github.com/attendly/server/internal/domain/categories"
	"github.com/attendly/server/internal/domain/comments"
	"github.com/attendly/server/internal/domain/compilations"
	"github.com/attendly/server/internal/domain/events"
	"github.com/attendly/server/internal/domain/requests"
	"github.com/attendly/server/internal/domain/users"
	"github.com/attendly/server/internal/stats"
)

type Repository interface {
	Events() events.Repository
	Locations() events.LocationRepository
	Requests() requests.Repository
	Users() users.Repository
	Categories() categories.Repository
	Compilations() compilations.Repository
	Comments() comments.Repository
	Stats() stats.Repository

	// WithTx runs fn in a single transaction: the Repository passed to fn
	// issues every query on that transaction, and row locks taken through it
	// are held until commit or rollback. fn returning an error rolls the
	// whole unit of work back.
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
}
