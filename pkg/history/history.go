// Package history persists execution reports in an embedded BadgerDB
// journal, so past commits stay inspectable after the process exits.
//
// Storage model: each report is stored twice under namespaced prefixes.
// The full report lives at "report:<id>". A summary entry lives at
// "started:<timestamp>:<id>", where the fixed-width timestamp makes key
// order equal to chronological order, so listings are one reverse range
// scan with no full-report loads.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/edfm/edfm/pkg/executor"
)

// ErrNotFound is returned when no report exists for the requested ID.
var ErrNotFound = errors.New("report not found")

const (
	reportPrefix = "report:"
	indexPrefix  = "started:"

	// Fixed-width so lexical key order equals chronological order.
	indexTimeLayout = "2006-01-02T15:04:05.000000000Z"
)

// Summary is the listing view of a stored report.
type Summary struct {
	ID        string         `json:"id"`
	Backend   string         `json:"backend"`
	StartedAt time.Time      `json:"started_at"`
	Tally     executor.Tally `json:"tally"`
	Total     int            `json:"total"`
}

// Journal is a BadgerDB-backed store of execution reports.
type Journal struct {
	db *badger.DB
}

// Open opens (or creates) a journal at the given directory.
func Open(path string) (*Journal, error) {
	opts := badger.DefaultOptions(path)
	opts = opts.WithLoggingLevel(badger.WARNING)
	// Reports are small JSON documents; compression overhead is not
	// worth it.
	opts = opts.WithCompression(options.None)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open history journal at %s: %w", path, err)
	}
	return &Journal{db: db}, nil
}

// Close releases the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Save stores a report under its ID.
func (j *Journal) Save(report *executor.Report) error {
	if report.ID == "" {
		return fmt.Errorf("cannot save report without an ID")
	}

	reportData, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report %s: %w", report.ID, err)
	}

	summary := Summary{
		ID:        report.ID,
		Backend:   report.Backend,
		StartedAt: report.StartedAt,
		Tally:     report.Tally,
		Total:     len(report.Records),
	}
	summaryData, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to encode report summary %s: %w", report.ID, err)
	}

	return j.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(reportPrefix+report.ID), reportData); err != nil {
			return err
		}
		return txn.Set(indexKey(report.StartedAt, report.ID), summaryData)
	})
}

// Get loads a full report by ID. Returns ErrNotFound when absent.
func (j *Journal) Get(id string) (*executor.Report, error) {
	var report executor.Report

	err := j.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(reportPrefix + id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s", ErrNotFound, id)
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &report)
		})
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// List returns report summaries, newest first. A limit of 0 returns all.
func (j *Journal) List(limit int) ([]Summary, error) {
	var out []Summary

	err := j.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(indexPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration seeks past the last key in the prefix range.
		for it.Seek(indexSeekEnd()); it.ValidForPrefix([]byte(indexPrefix)); it.Next() {
			if limit > 0 && len(out) == limit {
				break
			}
			var s Summary
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &s)
			}); err != nil {
				return err
			}
			out = append(out, s)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Prune keeps the newest keep reports and deletes the rest. Returns the
// number of reports removed.
func (j *Journal) Prune(keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}

	summaries, err := j.List(0)
	if err != nil {
		return 0, err
	}
	if len(summaries) <= keep {
		return 0, nil
	}

	doomed := summaries[keep:]
	err = j.db.Update(func(txn *badger.Txn) error {
		for _, s := range doomed {
			if err := txn.Delete([]byte(reportPrefix + s.ID)); err != nil {
				return err
			}
			if err := txn.Delete(indexKey(s.StartedAt, s.ID)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(doomed), nil
}

func indexKey(startedAt time.Time, id string) []byte {
	return []byte(indexPrefix + startedAt.UTC().Format(indexTimeLayout) + ":" + id)
}

// indexSeekEnd is the reverse-iteration seek target: a key greater than
// every index key.
func indexSeekEnd() []byte {
	return []byte(indexPrefix + strings.Repeat("\xff", 8))
}
