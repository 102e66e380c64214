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

package pipeline

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/navdeep-G/the-r-in-spark/stage"
)

// StageNotFoundError is reported when a stage reference matches
// no stage in the pipeline.
type StageNotFoundError struct {
	Ref string
}

func (err *StageNotFoundError) Error() string {
	return fmt.Sprintf("no stage matches reference %q", err.Ref)
}

// AmbiguousStageReferenceError is reported when a kind-name prefix
// matches more than one stage.
type AmbiguousStageReferenceError struct {
	Ref     string
	Matches []string
}

func (err *AmbiguousStageReferenceError) Error() string {
	return fmt.Sprintf(
		"stage reference %q is ambiguous (matches %s)",
		err.Ref, strings.Join(err.Matches, ", "))
}

// Stage looks a stage up by exact UID or - failing that - by a prefix
// of the stage UID or kind name. A prefix must match exactly one
// stage.
func (p Pipeline) Stage(ref string) (stage.Stage, error) {
	idx, err := p.findStage(ref)
	if err != nil {
		return nil, err
	}
	return p.stages[idx], nil
}

func (p Pipeline) findStage(ref string) (int, error) {
	for i, s := range p.stages {
		if s.UID() == ref {
			return i, nil
		}
	}
	var matches []int
	for i, s := range p.stages {
		if strings.HasPrefix(s.UID(), ref) || strings.HasPrefix(s.Kind(), ref) {
			matches = append(matches, i)
		}
	}
	switch len(matches) {
	case 0:
		return 0, &StageNotFoundError{Ref: ref}
	case 1:
		return matches[0], nil
	}
	uids := make([]string, len(matches))
	for i, idx := range matches {
		uids[i] = p.stages[idx].UID()
	}
	return 0, &AmbiguousStageReferenceError{Ref: ref, Matches: uids}
}

func newPipelineUID() string {
	return fmt.Sprintf("pipeline_%08x", rand.Uint32())
}
