// Package repository provides a generic data-access facade over Bun models.
// Each domain aggregate gets a typed instance instead of repeated
// boilerplate. Reads are untracked (every call re-queries the store);
// writes commit immediately except Delete, which stages the removal until
// the caller invokes Commit.
package repository

import (
	"context"
	"reflect"
	"sync"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// Repository is the uniform persistence contract shared by all aggregates.
type Repository[T any] interface {
	// Insert adds a new record and commits immediately. Nil input is
	// rejected.
	Insert(ctx context.Context, entity T) (T, error)
	// Attach re-registers a detached instance with the store: the row is
	// overwritten when it exists and created when it does not. Commits
	// immediately.
	Attach(ctx context.Context, entity T) (T, error)
	// Update overwrites every column of the row identified by the entity's
	// primary key and commits. Full-row semantics, not a partial patch.
	Update(ctx context.Context, entity T) (T, error)
	// Delete stages the entity for removal. Nothing is written until the
	// caller invokes Commit.
	Delete(ctx context.Context, entity T) error
	// Commit flushes all staged deletes in a single transaction.
	Commit(ctx context.Context) error
	// GetAll returns every row, optionally eager-loading the named
	// relations.
	GetAll(ctx context.Context, includes ...string) ([]T, error)
	// GetDetail returns the first row matching the criteria, or a
	// record-not-found error (check with IsRecordNotFound).
	GetDetail(ctx context.Context, criteria ...SelectCriteria) (T, error)
	// CheckExists reports whether at least one row matches the criteria.
	CheckExists(ctx context.Context, criteria ...SelectCriteria) (bool, error)
}

// ModelHandlers carries the type-specific callbacks a repository needs.
type ModelHandlers[T any] struct {
	// NewRecord returns a fresh, addressable record for scan targets.
	NewRecord func() T
}

type repo[T any] struct {
	db       *bun.DB
	handlers ModelHandlers[T]

	mu      sync.Mutex
	pending []T
}

// NewRepository builds a Repository for the given model type.
func NewRepository[T any](db *bun.DB, handlers ModelHandlers[T]) Repository[T] {
	if handlers.NewRecord == nil {
		panic("repository: ModelHandlers.NewRecord is required")
	}
	return &repo[T]{
		db:       db,
		handlers: handlers,
	}
}

func (r *repo[T]) Insert(ctx context.Context, entity T) (T, error) {
	var zero T
	if isNil(entity) {
		return zero, errors.New("insert entity must not be nil", errors.CategoryBadInput)
	}

	if _, err := r.db.NewInsert().Model(entity).Exec(ctx); err != nil {
		return zero, WrapStoreError(err, "could not save record")
	}

	return entity, nil
}

func (r *repo[T]) Attach(ctx context.Context, entity T) (T, error) {
	var zero T
	if isNil(entity) {
		return zero, errors.New("attach entity must not be nil", errors.CategoryBadInput)
	}

	res, err := r.db.NewUpdate().Model(entity).WherePK().Exec(ctx)
	if err != nil {
		return zero, WrapStoreError(err, "could not attach record")
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		if _, err := r.db.NewInsert().Model(entity).Exec(ctx); err != nil {
			return zero, WrapStoreError(err, "could not attach record")
		}
	}

	return entity, nil
}

func (r *repo[T]) Update(ctx context.Context, entity T) (T, error) {
	var zero T
	if isNil(entity) {
		return zero, errors.New("update entity must not be nil", errors.CategoryBadInput)
	}

	res, err := r.db.NewUpdate().Model(entity).WherePK().Exec(ctx)
	if err != nil {
		return zero, WrapStoreError(err, "could not update record")
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return zero, NewRecordNotFound()
	}

	return entity, nil
}

func (r *repo[T]) Delete(ctx context.Context, entity T) error {
	if isNil(entity) {
		return errors.New("delete entity must not be nil", errors.CategoryBadInput)
	}

	r.mu.Lock()
	r.pending = append(r.pending, entity)
	r.mu.Unlock()

	return nil
}

func (r *repo[T]) Commit(ctx context.Context) error {
	r.mu.Lock()
	staged := r.pending
	r.pending = nil
	r.mu.Unlock()

	if len(staged) == 0 {
		return nil
	}

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, entity := range staged {
			if _, err := tx.NewDelete().Model(entity).WherePK().Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		// put the staged records back so the caller can retry the commit
		r.mu.Lock()
		r.pending = append(staged, r.pending...)
		r.mu.Unlock()
		return WrapStoreError(err, "could not commit staged deletes")
	}

	return nil
}

func (r *repo[T]) GetAll(ctx context.Context, includes ...string) ([]T, error) {
	var records []T

	q := r.db.NewSelect().Model(&records)
	for _, include := range includes {
		q = q.Relation(include)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, WrapStoreError(err, "could not retrieve records")
	}

	return records, nil
}

func (r *repo[T]) GetDetail(ctx context.Context, criteria ...SelectCriteria) (T, error) {
	var zero T
	record := r.handlers.NewRecord()

	q := r.db.NewSelect().Model(record)
	for _, c := range criteria {
		q = q.Apply(c)
	}

	if err := q.Limit(1).Scan(ctx); err != nil {
		if isNoRows(err) {
			return zero, NewRecordNotFound()
		}
		return zero, WrapStoreError(err, "could not retrieve record")
	}

	return record, nil
}

func (r *repo[T]) CheckExists(ctx context.Context, criteria ...SelectCriteria) (bool, error) {
	q := r.db.NewSelect().Model(r.handlers.NewRecord())
	for _, c := range criteria {
		q = q.Apply(c)
	}

	exists, err := q.Exists(ctx)
	if err != nil {
		return false, WrapStoreError(err, "could not check record existence")
	}

	return exists, nil
}

func isNil(entity any) bool {
	if entity == nil {
		return true
	}

	v := reflect.ValueOf(entity)
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
		return v.IsNil()
	default:
		return false
	}
}
