// Copyright 2026 Navdeep Gill
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package runstore keeps a local history of tuning runs so past
// searches can be listed and compared without re-running them.
package runstore

import (
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/navdeep-G/the-r-in-spark/tuning"
	"github.com/rs/zerolog/log"
	"github.com/vmihailenco/msgpack/v5"
)

const runKeyPrefix = "run:"

// Run is one recorded tuning run: its configuration, the full
// validation report and where the winning bundle went.
type Run struct {
	ID         string                    `json:"id" msgpack:"id"`
	Created    time.Time                 `json:"created" msgpack:"created"`
	Metric     string                    `json:"metric" msgpack:"metric"`
	NumFolds   int                       `json:"numFolds" msgpack:"numFolds"`
	Seed       int64                     `json:"seed" msgpack:"seed"`
	BestIndex  int                       `json:"bestIndex" msgpack:"bestIndex"`
	BundlePath string                    `json:"bundlePath" msgpack:"bundlePath"`
	Report     []tuning.ValidationMetric `json:"report" msgpack:"report"`
}

// DB is a wrapper around badger.DB providing concrete methods for
// adding and retrieving tuning runs.
type DB struct {
	bdb *badger.DB
}

func OpenDB(path string) (*DB, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	bdb, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open run store: %w", err)
	}
	return &DB{bdb: bdb}, nil
}

// Close closes the internal Badger database. It is possible to call
// the method on a nil instance, in which case it is a NOP.
func (db *DB) Close() error {
	if db != nil && db.bdb != nil {
		return db.bdb.Close()
	}
	return nil
}

// NewRunID derives a run identifier from the current time.
func NewRunID() string {
	return time.Now().Format("20060102T150405.000")
}

// NewRun builds a Run record out of a finished cross-validation.
func NewRun(metric, bundlePath string, result *tuning.Result) Run {
	return Run{
		ID:         NewRunID(),
		Created:    time.Now(),
		Metric:     metric,
		NumFolds:   result.NumFolds,
		Seed:       result.Seed,
		BestIndex:  result.BestIndex,
		BundlePath: bundlePath,
		Report:     result.Metrics,
	}
}

func (db *DB) StoreRun(run Run) error {
	rawData, err := msgpack.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to encode tuning run: %w", err)
	}
	key := []byte(runKeyPrefix + run.ID)
	err = db.bdb.Update(func(txn *badger.Txn) error {
		return txn.Set(key, rawData)
	})
	if err != nil {
		return fmt.Errorf("failed to store tuning run: %w", err)
	}
	log.Debug().Str("runId", run.ID).Msg("stored tuning run")
	return nil
}

func (db *DB) GetRun(id string) (Run, error) {
	var ans Run
	err := db.bdb.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(runKeyPrefix + id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return msgpack.Unmarshal(val, &ans)
		})
	})
	if err != nil {
		return Run{}, fmt.Errorf("failed to load tuning run %s: %w", id, err)
	}
	return ans, nil
}

// ListRuns returns all recorded runs, newest first.
func (db *DB) ListRuns() ([]Run, error) {
	var ans []Run
	err := db.bdb.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(runKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			var run Run
			err := it.Item().Value(func(val []byte) error {
				return msgpack.Unmarshal(val, &run)
			})
			if err != nil {
				return err
			}
			ans = append(ans, run)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tuning runs: %w", err)
	}
	sort.Slice(ans, func(i, j int) bool {
		return ans[i].Created.After(ans[j].Created)
	})
	return ans, nil
}
