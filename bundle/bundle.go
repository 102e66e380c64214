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

// Package bundle persists fitted pipeline models as self-describing
// directories: a JSON manifest recording format version and stage
// order, plus one sub-directory per stage with its metadata record
// and - where the stage carries learned state - a msgpack-encoded
// artifact record. The layout is the entire wire contract: a reader
// needs no shared memory or library version with the writer.
package bundle

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/navdeep-G/the-r-in-spark/pipeline"
	"github.com/navdeep-G/the-r-in-spark/stage"
	"github.com/rs/zerolog/log"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	FormatName    = "sparkpipe/bundle"
	FormatVersion = 1

	manifestFile  = "manifest.json"
	stagesDir     = "stages"
	metadataFile  = "metadata.json"
	artifactsFile = "artifacts.bin"
)

// CorruptBundleError is reported when a bundle directory is
// structurally invalid.
type CorruptBundleError struct {
	Path   string
	Reason string
	Err    error
}

func (err *CorruptBundleError) Error() string {
	if err.Err != nil {
		return fmt.Sprintf("corrupt bundle %s: %s: %s", err.Path, err.Reason, err.Err)
	}
	return fmt.Sprintf("corrupt bundle %s: %s", err.Path, err.Reason)
}

func (err *CorruptBundleError) Unwrap() error {
	return err.Err
}

type manifest struct {
	Format    string          `json:"format"`
	Version   int             `json:"version"`
	UID       string          `json:"uid"`
	CreatedAt time.Time       `json:"createdAt"`
	Stages    []manifestStage `json:"stages"`
}

type manifestStage struct {
	Index int    `json:"index"`
	Kind  string `json:"kind"`
	UID   string `json:"uid"`
}

type stageMetadata struct {
	Kind   string         `json:"kind"`
	UID    string         `json:"uid"`
	Params map[string]any `json:"params"`
}

// Save writes the fitted model into the destination directory,
// which is created (but must not already contain a bundle).
func Save(model *pipeline.PipelineModel, dst string) error {
	if _, err := os.Stat(filepath.Join(dst, manifestFile)); err == nil {
		return fmt.Errorf("destination %s already contains a bundle", dst)
	}
	if err := os.MkdirAll(dst, 0755); err != nil {
		return fmt.Errorf("failed to create bundle directory: %w", err)
	}
	stages := model.Stages()
	mf := manifest{
		Format:    FormatName,
		Version:   FormatVersion,
		UID:       model.UID(),
		CreatedAt: time.Now(),
		Stages:    make([]manifestStage, len(stages)),
	}
	for i, t := range stages {
		mf.Stages[i] = manifestStage{Index: i, Kind: t.Kind(), UID: t.UID()}
		if err := saveStage(dst, i, t); err != nil {
			return fmt.Errorf("failed to save stage %s: %w", t.UID(), err)
		}
	}
	rawData, err := json.MarshalIndent(mf, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode bundle manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dst, manifestFile), rawData, 0644); err != nil {
		return fmt.Errorf("failed to write bundle manifest: %w", err)
	}
	log.Info().
		Str("path", dst).
		Int("numStages", len(stages)).
		Msg("saved model bundle")
	return nil
}

func saveStage(dst string, idx int, t stage.Transformer) error {
	dir := stageDir(dst, idx, t.Kind())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	meta := stageMetadata{
		Kind:   t.Kind(),
		UID:    t.UID(),
		Params: t.Params(),
	}
	rawData, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, metadataFile), rawData, 0644); err != nil {
		return err
	}
	persistent, ok := t.(stage.Persistent)
	if !ok {
		return nil
	}
	artifacts, err := persistent.Artifacts()
	if err != nil {
		return err
	}
	rawData, err = msgpack.Marshal(artifacts)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, artifactsFile), rawData, 0644)
}

// Load reads a bundle directory back into an equivalent in-memory
// model. Stage order and UIDs are preserved exactly as written.
func Load(src string) (*pipeline.PipelineModel, error) {
	rawData, err := os.ReadFile(filepath.Join(src, manifestFile))
	if err != nil {
		return nil, &CorruptBundleError{Path: src, Reason: "cannot read manifest", Err: err}
	}
	var mf manifest
	if err := json.Unmarshal(rawData, &mf); err != nil {
		return nil, &CorruptBundleError{Path: src, Reason: "cannot parse manifest", Err: err}
	}
	if mf.Format != FormatName {
		return nil, &CorruptBundleError{
			Path: src, Reason: fmt.Sprintf("unexpected format %q", mf.Format)}
	}
	if mf.Version != FormatVersion {
		return nil, &CorruptBundleError{
			Path: src, Reason: fmt.Sprintf("unsupported format version %d", mf.Version)}
	}
	stages := make([]stage.Transformer, len(mf.Stages))
	for i, entry := range mf.Stages {
		if entry.Index != i {
			return nil, &CorruptBundleError{
				Path: src, Reason: fmt.Sprintf("out-of-order stage entry %d", entry.Index)}
		}
		t, err := loadStage(src, entry)
		if err != nil {
			return nil, err
		}
		stages[i] = t
	}
	log.Debug().
		Str("path", src).
		Int("numStages", len(stages)).
		Msg("loaded model bundle")
	return pipeline.NewModel(mf.UID, stages), nil
}

func loadStage(src string, entry manifestStage) (stage.Transformer, error) {
	dir := stageDir(src, entry.Index, entry.Kind)
	rawData, err := os.ReadFile(filepath.Join(dir, metadataFile))
	if err != nil {
		return nil, &CorruptBundleError{
			Path: src, Reason: fmt.Sprintf("cannot read metadata of stage %d", entry.Index), Err: err}
	}
	var meta stageMetadata
	if err := json.Unmarshal(rawData, &meta); err != nil {
		return nil, &CorruptBundleError{
			Path: src, Reason: fmt.Sprintf("cannot parse metadata of stage %d", entry.Index), Err: err}
	}
	if meta.Kind != entry.Kind || meta.UID != entry.UID {
		return nil, &CorruptBundleError{
			Path:   src,
			Reason: fmt.Sprintf("stage %d metadata disagrees with manifest", entry.Index)}
	}
	t, err := stage.Restore(meta.Kind, meta.UID, meta.Params, func(into any) error {
		artData, err := os.ReadFile(filepath.Join(dir, artifactsFile))
		if err != nil {
			return &CorruptBundleError{
				Path: src, Reason: fmt.Sprintf("cannot read artifacts of stage %d", entry.Index), Err: err}
		}
		if err := msgpack.Unmarshal(artData, into); err != nil {
			return &CorruptBundleError{
				Path: src, Reason: fmt.Sprintf("cannot decode artifacts of stage %d", entry.Index), Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func stageDir(root string, idx int, kind string) string {
	return filepath.Join(root, stagesDir, fmt.Sprintf("%03d_%s", idx, kind))
}
