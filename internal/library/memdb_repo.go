package library

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/go-memdb"
)

const booksTable = "books"

// MemDBRepo keeps books in an in-process go-memdb database. Stored values are
// never mutated; updates insert a modified copy.
type MemDBRepo struct {
	db *memdb.MemDB
}

func NewMemDBRepo() (*MemDBRepo, error) {
	schema := &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			booksTable: {
				Name: booksTable,
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "ID"},
					},
					"owner": {
						Name:    "owner",
						Unique:  false,
						Indexer: &memdb.StringFieldIndex{Field: "UserID"},
					},
				},
			},
		},
	}

	db, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize in-memory database: %w", err)
	}
	return &MemDBRepo{db: db}, nil
}

func (r *MemDBRepo) Create(_ context.Context, b *Book) error {
	b.ID = uuid.NewString()
	stored := *b

	txn := r.db.Txn(true)
	defer txn.Abort()
	if err := txn.Insert(booksTable, &stored); err != nil {
		return fmt.Errorf("insert book: %w", err)
	}
	txn.Commit()
	return nil
}

func (r *MemDBRepo) Get(_ context.Context, id string) (Book, error) {
	txn := r.db.Txn(false)
	defer txn.Abort()
	return getBook(txn, id)
}

func getBook(txn *memdb.Txn, id string) (Book, error) {
	raw, err := txn.First(booksTable, "id", id)
	if err != nil {
		return Book{}, fmt.Errorf("get book %s: %w", id, err)
	}
	if raw == nil {
		return Book{}, ErrNotFound
	}
	return *raw.(*Book), nil
}

func (r *MemDBRepo) ListByOwner(_ context.Context, ownerID string) ([]Book, error) {
	txn := r.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(booksTable, "owner", ownerID)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	out := []Book{}
	for obj := it.Next(); obj != nil; obj = it.Next() {
		out = append(out, *obj.(*Book))
	}
	return out, nil
}

func (r *MemDBRepo) Update(_ context.Context, id string, p Patch) (Book, error) {
	txn := r.db.Txn(true)
	defer txn.Abort()

	b, err := getBook(txn, id)
	if err != nil {
		return Book{}, err
	}
	p.ApplyTo(&b)
	if err := txn.Insert(booksTable, &b); err != nil {
		return Book{}, fmt.Errorf("update book %s: %w", id, err)
	}
	txn.Commit()
	return b, nil
}

func (r *MemDBRepo) Delete(_ context.Context, id string) error {
	txn := r.db.Txn(true)
	defer txn.Abort()

	n, err := txn.DeleteAll(booksTable, "id", id)
	if err != nil {
		return fmt.Errorf("delete book %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	txn.Commit()
	return nil
}

// Ping always succeeds; the database lives in process.
func (r *MemDBRepo) Ping(context.Context) error {
	return nil
}
