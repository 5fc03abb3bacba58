package badger

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/shopspring/decimal"

	v1 "github.com/aevon-lab/project-indica/internal/api/v1"
	"github.com/aevon-lab/project-indica/internal/core/aggregation"
	"github.com/aevon-lab/project-indica/internal/core/indicator"
	"github.com/aevon-lab/project-indica/internal/core/storage"
)

const sequenceBandwidth = 100

// Store implements storage.Backend, storage.ChangeLog and storage.CheckpointStore
// on BadgerDB.
type Store struct {
	db       *badger.DB
	seq      *badger.Sequence
	gc       *gcRunner
	inMemory bool
}

// Open opens the database described by cfg and starts value log GC when configured.
func Open(cfg Config) (*Store, error) {
	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}
	seq, err := db.GetSequence([]byte(changeSequenceKey), sequenceBandwidth)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open change sequence: %w", err)
	}

	s := &Store{db: db, seq: seq, inMemory: cfg.InMemory}
	if cfg.GCInterval > 0 && !cfg.InMemory {
		s.gc = startGC(db, cfg.GCInterval, cfg.GCDiscardRatio)
	}

	slog.Info("[Badger] Store opened",
		"path", cfg.Path,
		"in_memory", cfg.InMemory)
	return s, nil
}

// GetIndicator returns storage.ErrNotFound if no document has the given id.
func (s *Store) GetIndicator(ctx context.Context, id string) (*indicator.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(docKey(id))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get indicator %s: %w", id, err)
	}
	return indicator.DecodeDocument(raw)
}

// SaveIndicator replaces the document and its index keys in a single transaction.
func (s *Store) SaveIndicator(ctx context.Context, doc *indicator.Document) error {
	entries, err := storage.IndexEntries(doc)
	if err != nil {
		return err
	}
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("save indicator %s: marshal: %w", doc.ID, err)
	}

	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = string(indexKey(e))
	}
	refJSON, err := json.Marshal(keys)
	if err != nil {
		return fmt.Errorf("save indicator %s: marshal refs: %w", doc.ID, err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		old, err := readRefs(txn, doc.ID)
		if err != nil {
			return err
		}
		for _, k := range old {
			if err := txn.Delete([]byte(k)); err != nil {
				return err
			}
		}
		for i, e := range entries {
			if err := txn.Set([]byte(keys[i]), []byte(e.Value.String())); err != nil {
				return err
			}
		}
		if err := txn.Set(refKey(doc.ID), refJSON); err != nil {
			return err
		}
		if err := txn.Set(docKey(doc.ID), docJSON); err != nil {
			return err
		}
		// The transaction is discarded, not committed, if ctx ended meanwhile.
		return ctx.Err()
	})
	if err != nil {
		return fmt.Errorf("save indicator %s: %w", doc.ID, err)
	}

	slog.Debug("[Badger] Saved indicator",
		"id", doc.ID,
		"indicator_type", doc.DocType,
		"index_keys", len(entries))
	return nil
}

func readRefs(txn *badger.Txn, id string) ([]string, error) {
	item, err := txn.Get(refKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var refs []string
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &refs)
	})
	return refs, err
}

// scan visits the values matched by q in ascending key order.
func (s *Store) scan(ctx context.Context, q indicator.RangeQuery, visit func(iv indexedValue, value []byte) error) error {
	groupKey, err := indicator.EncodeGroupKey(q.Group)
	if err != nil {
		return err
	}
	prefix := seriesPrefix(q.IndicatorType, groupKey, q.Calculator, q.Emitter)

	seek, lo, hi := prefix+sep, "", ""
	if !q.Null {
		var ok bool
		if lo, hi, ok = q.Bounds(); !ok {
			return nil
		}
		seek = prefix + lo
	}

	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(seek)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			iv, err := parseIndexTail(strings.TrimPrefix(string(item.Key()), prefix))
			if err != nil {
				return err
			}
			if q.Null {
				if iv.day != "" {
					return nil
				}
			} else if iv.day > hi {
				return nil
			} else if iv.day < lo {
				continue
			}
			if err := item.Value(func(val []byte) error { return visit(iv, val) }); err != nil {
				return err
			}
		}
		return nil
	})
}

// Reduce folds the values matched by q into every reduce operator.
func (s *Store) Reduce(ctx context.Context, q indicator.RangeQuery) (aggregation.Stats, error) {
	stats := aggregation.Stats{}
	err := s.scan(ctx, q, func(_ indexedValue, value []byte) error {
		d, err := decimal.NewFromString(string(value))
		if err != nil {
			return fmt.Errorf("parse indexed value %q: %w", value, err)
		}
		stats = stats.Add(d)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reduce %s.%s.%s: %w", q.IndicatorType, q.Calculator, q.Emitter, err)
	}
	return stats, nil
}

// IDs returns the document id of every value matched by q, newest first when descending.
func (s *Store) IDs(ctx context.Context, q indicator.RangeQuery) ([]string, error) {
	ids := []string{}
	err := s.scan(ctx, q, func(iv indexedValue, _ []byte) error {
		ids = append(ids, iv.docID)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ids %s.%s.%s: %w", q.IndicatorType, q.Calculator, q.Emitter, err)
	}
	if q.Descending && !q.Null {
		slices.Reverse(ids)
	}
	return ids, nil
}

// AppendChange stores evt under the next ingest sequence number.
// Returns storage.ErrDuplicate if a change with the same id already exists.
func (s *Store) AppendChange(ctx context.Context, evt *v1.ChangeEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal change: %w", err)
	}
	next, err := s.seq.Next()
	if err != nil {
		return fmt.Errorf("allocate ingest seq: %w", err)
	}
	ingestSeq := int64(next) + 1

	err = s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(changeIDKey(evt.ID)); err == nil {
			return storage.ErrDuplicate
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Set(changeKey(ingestSeq), data); err != nil {
			return err
		}
		return txn.Set(changeIDKey(evt.ID), changeKey(ingestSeq))
	})
	if errors.Is(err, storage.ErrDuplicate) {
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to append change: %w", err)
	}
	evt.IngestSeq = ingestSeq
	return nil
}

// RetrieveChangesAfterCursor fetches changes with ingest_seq > cursor in strict order.
func (s *Store) RetrieveChangesAfterCursor(ctx context.Context, cursor int64, limit int) ([]*v1.ChangeEvent, error) {
	var changes []*v1.ChangeEvent
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixChange)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(changeKey(cursor + 1)); it.ValidForPrefix([]byte(prefixChange)) && len(changes) < limit; it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			var evt v1.ChangeEvent
			if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &evt) }); err != nil {
				return fmt.Errorf("decode change: %w", err)
			}
			evt.IngestSeq = int64(binary.BigEndian.Uint64(item.Key()[len(prefixChange):]))
			changes = append(changes, &evt)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read changes by cursor: %w", err)
	}
	return changes, nil
}

// ReadCheckpoint returns 0 when the feed has never checkpointed.
func (s *Store) ReadCheckpoint(ctx context.Context, feed string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var cursor int64
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		cursor, err = readCheckpoint(txn, feed)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("read checkpoint %s: %w", feed, err)
	}
	return cursor, nil
}

// WriteCheckpoint advances the feed's cursor. Stale writes are ignored.
func (s *Store) WriteCheckpoint(ctx context.Context, feed string, cursor int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		current, err := readCheckpoint(txn, feed)
		if err != nil {
			return err
		}
		if cursor <= current {
			slog.Warn("[Badger] Skipping stale checkpoint write",
				"feed", feed,
				"cursor", cursor,
				"durable_cursor", current)
			return nil
		}
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, uint64(cursor))
		return txn.Set(checkpointKey(feed), buf)
	})
	if err != nil {
		return fmt.Errorf("write checkpoint %s: %w", feed, err)
	}
	return nil
}

func readCheckpoint(txn *badger.Txn, feed string) (int64, error) {
	item, err := txn.Get(checkpointKey(feed))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var cursor int64
	err = item.Value(func(val []byte) error {
		if len(val) != 8 {
			return fmt.Errorf("malformed checkpoint value of %d bytes", len(val))
		}
		cursor = int64(binary.BigEndian.Uint64(val))
		return nil
	})
	return cursor, err
}

// Ping reports whether the database is open.
func (s *Store) Ping(context.Context) error {
	if s.db.IsClosed() {
		return errors.New("badger database is closed")
	}
	return nil
}

// Close releases the change sequence, stops GC and closes the database.
func (s *Store) Close() error {
	if s.gc != nil {
		s.gc.stop()
	}
	if err := s.seq.Release(); err != nil {
		slog.Warn("[Badger] Failed to release change sequence", "error", err)
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close badger database: %w", err)
	}
	slog.Info("[Badger] Store closed gracefully")
	return nil
}
