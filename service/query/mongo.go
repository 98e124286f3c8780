package query

/*
	Package `query` provides an interface for querying mongo db. It is a thin
	wrap of https://github.com/mongodb/mongo-go-driver, see
	https://godoc.org/go.mongodb.org/mongo-driver/mongo for details.
*/

import (
	"fmt"

	"github.com/decentraland/land-auction/base/ctx"
	"github.com/decentraland/land-auction/domain"
)

var (
	// ErrNotFound is mongo document not found error
	ErrNotFound = fmt.Errorf("document not found")

	// ErrDuplicateKey is an error when violating unique index
	ErrDuplicateKey = fmt.Errorf("duplicate key")
)

// Mongo abstracts the mongo layer.
type Mongo interface {
	// Insert inserts a new document to the table
	Insert(context ctx.Ctx, table domain.Table, insert interface{}) error

	// InsertMany inserts documents in order, stopping at the first failure
	InsertMany(context ctx.Ctx, table domain.Table, inserts []interface{}) error

	// FindOne get data from the table
	FindOne(context ctx.Ctx, table domain.Table, query, result interface{}) error

	// Count return counting for matched entry in the table
	Count(context ctx.Ctx, table domain.Table, selector interface{}) (n int, err error)

	// Upsert update an entry if the selector already exists, insert it otherwise
	Upsert(context ctx.Ctx, table domain.Table, selector, update interface{}) error

	// Search sort order by `sort` argument (ex "timestamp" ascending, or "-timestamp" descending)
	// if `sort` is "", the sort action is skipped, and MongoDB does not guarantee the order of query results.
	Search(context ctx.Ctx, table domain.Table, offset, limit int, sort string, query, results interface{}) error

	// Remove removes an entry from the table.
	// Returns ErrNotFound if selector does not match any documents
	Remove(context ctx.Ctx, table domain.Table, selector interface{}) error

	// RemoveMany removes every document matching selector. Matching nothing
	// is not an error
	RemoveMany(context ctx.Ctx, table domain.Table, selector interface{}) error
}
