// Package memory is an in-process transactional store for development and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	v1 "github.com/logistics-lab/palletbook/internal/api/v1"
	"github.com/logistics-lab/palletbook/internal/core/storage"
	"github.com/logistics-lab/palletbook/internal/core/summary"
)

var _ storage.Store = (*Store)(nil)

type recordKey struct {
	companyID string
	id        string
}

type storedRecord struct {
	record *v1.WorkRecord
	seq    int64
}

// Store keeps records and summaries in maps. Transactions are serialized by a
// single write lock and stage their writes until commit.
type Store struct {
	mu        sync.RWMutex
	records   map[recordKey]storedRecord
	summaries map[string]*summary.MonthlySummary
	seq       int64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		records:   make(map[recordKey]storedRecord),
		summaries: make(map[string]*summary.MonthlySummary),
	}
}

// RunInTransaction runs fn with exclusive access. Writes become visible only
// if fn returns nil.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context, tx storage.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{
		store:     s,
		records:   make(map[recordKey]*v1.WorkRecord),
		summaries: make(map[string]*summary.MonthlySummary),
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	tx.commit()
	return nil
}

func (s *Store) QueryRecords(ctx context.Context, filter storage.RecordFilter) ([]*v1.WorkRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*v1.WorkRecord, 0)
	for key, stored := range s.records {
		if key.companyID != filter.CompanyID {
			continue
		}
		r := stored.record
		if filter.DistributorID != "" && r.DistributorID != filter.DistributorID {
			continue
		}
		if !filter.From.IsZero() && r.WorkDate.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && r.WorkDate.After(filter.To) {
			continue
		}
		out = append(out, r.Clone())
	}

	storage.SortRecords(out, filter.Order)
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *Store) FindRecord(ctx context.Context, companyID, id string) (*v1.WorkRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.records[recordKey{companyID: companyID, id: id}]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return stored.record.Clone(), nil
}

func (s *Store) FindSummary(ctx context.Context, companyID string, year, month int) (*summary.MonthlySummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.summaries[summary.Key(companyID, year, month)]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return doc.Clone(), nil
}

func (s *Store) ListBuckets(ctx context.Context, from, to v1.Date) ([]storage.Bucket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lo := storage.MonthIndex(from.Year, int(from.Month))
	hi := storage.MonthIndex(to.Year, int(to.Month))
	seen := make(map[string]storage.Bucket)
	add := func(b storage.Bucket) {
		idx := storage.MonthIndex(b.Year, b.Month)
		if idx < lo || idx > hi {
			return
		}
		seen[b.Key()] = b
	}

	for _, stored := range s.records {
		year, month := summary.BucketOf(stored.record)
		add(storage.Bucket{CompanyID: stored.record.CompanyID, Year: year, Month: month})
	}
	for _, doc := range s.summaries {
		add(storage.Bucket{CompanyID: doc.CompanyID, Year: doc.Year, Month: doc.Month})
	}

	out := make([]storage.Bucket, 0, len(seen))
	for _, b := range seen {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Close() error {
	return nil
}

// memTx stages writes. A nil staged record marks a delete.
type memTx struct {
	store     *Store
	records   map[recordKey]*v1.WorkRecord
	summaries map[string]*summary.MonthlySummary

	// staged record keys in first-write order
	order []recordKey
}

func (tx *memTx) GetSummary(ctx context.Context, companyID string, year, month int) (*summary.MonthlySummary, error) {
	key := summary.Key(companyID, year, month)
	if doc, ok := tx.summaries[key]; ok {
		return doc.Clone(), nil
	}
	doc, ok := tx.store.summaries[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return doc.Clone(), nil
}

func (tx *memTx) PutSummary(ctx context.Context, doc *summary.MonthlySummary) error {
	if doc == nil {
		return fmt.Errorf("put summary: nil document")
	}
	tx.summaries[doc.Key()] = doc.Clone()
	return nil
}

func (tx *memTx) GetRecord(ctx context.Context, companyID, id string) (*v1.WorkRecord, error) {
	r, ok := tx.lookup(recordKey{companyID: companyID, id: id})
	if !ok {
		return nil, storage.ErrNotFound
	}
	return r.Clone(), nil
}

func (tx *memTx) InsertRecord(ctx context.Context, r *v1.WorkRecord) error {
	key := recordKey{companyID: r.CompanyID, id: r.ID}
	if _, ok := tx.lookup(key); ok {
		return storage.ErrDuplicate
	}
	tx.stage(key, r.Clone())
	return nil
}

func (tx *memTx) UpdateRecord(ctx context.Context, r *v1.WorkRecord) error {
	key := recordKey{companyID: r.CompanyID, id: r.ID}
	if _, ok := tx.lookup(key); !ok {
		return storage.ErrNotFound
	}
	tx.stage(key, r.Clone())
	return nil
}

func (tx *memTx) DeleteRecord(ctx context.Context, companyID, id string) error {
	key := recordKey{companyID: companyID, id: id}
	if _, ok := tx.lookup(key); !ok {
		return storage.ErrNotFound
	}
	tx.stage(key, nil)
	return nil
}

func (tx *memTx) stage(key recordKey, r *v1.WorkRecord) {
	if _, ok := tx.records[key]; !ok {
		tx.order = append(tx.order, key)
	}
	tx.records[key] = r
}

func (tx *memTx) ListMonthRecords(ctx context.Context, companyID string, year, month int) ([]*v1.WorkRecord, error) {
	type row struct {
		record *v1.WorkRecord
		seq    int64
	}
	var rows []row
	match := func(r *v1.WorkRecord) bool {
		y, m := summary.BucketOf(r)
		return r.CompanyID == companyID && y == year && m == month
	}

	for key, stored := range tx.store.records {
		if _, staged := tx.records[key]; staged {
			continue
		}
		if match(stored.record) {
			rows = append(rows, row{record: stored.record, seq: stored.seq})
		}
	}
	// new records get the seqs commit will hand out
	pending := tx.store.seq
	for _, key := range tx.order {
		r := tx.records[key]
		if r == nil {
			continue
		}
		var seq int64
		if stored, exists := tx.store.records[key]; exists {
			seq = stored.seq
		} else {
			pending++
			seq = pending
		}
		if match(r) {
			rows = append(rows, row{record: r, seq: seq})
		}
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })
	out := make([]*v1.WorkRecord, len(rows))
	for i, rw := range rows {
		out[i] = rw.record.Clone()
	}
	return out, nil
}

func (tx *memTx) lookup(key recordKey) (*v1.WorkRecord, bool) {
	if r, staged := tx.records[key]; staged {
		return r, r != nil
	}
	stored, ok := tx.store.records[key]
	if !ok {
		return nil, false
	}
	return stored.record, true
}

// commit must run with the store's write lock held.
func (tx *memTx) commit() {
	s := tx.store
	for _, key := range tx.order {
		r := tx.records[key]
		if r == nil {
			delete(s.records, key)
			continue
		}
		if existing, ok := s.records[key]; ok {
			s.records[key] = storedRecord{record: r, seq: existing.seq}
			continue
		}
		s.seq++
		s.records[key] = storedRecord{record: r, seq: s.seq}
	}
	for key, doc := range tx.summaries {
		s.summaries[key] = doc
	}
}
