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

package stage

import "fmt"

// InvalidParameterError is reported when a configuration refers to
// a parameter name the stage kind does not declare. Where a known
// parameter is close enough, it is offered as a suggestion.
type InvalidParameterError struct {
	Kind       string
	Name       string
	Suggestion string
}

func (err *InvalidParameterError) Error() string {
	if err.Suggestion != "" {
		return fmt.Sprintf(
			"%s: unknown parameter %q (did you mean %q?)",
			err.Kind, err.Name, err.Suggestion)
	}
	return fmt.Sprintf("%s: unknown parameter %q", err.Kind, err.Name)
}

type MissingRequiredParameterError struct {
	Kind string
	Name string
}

func (err *MissingRequiredParameterError) Error() string {
	return fmt.Sprintf("%s: missing required parameter %q", err.Kind, err.Name)
}

type TypeMismatchError struct {
	Kind string
	Name string
	Want string
	Got  string
}

func (err *TypeMismatchError) Error() string {
	return fmt.Sprintf(
		"%s: parameter %q expects %s, got %s", err.Kind, err.Name, err.Want, err.Got)
}

// UnseenCategoryError is reported by indexing transformers when
// a value absent from the training data shows up at transform time
// and the configured fallback policy is "error".
type UnseenCategoryError struct {
	UID    string
	Column string
	Value  string
}

func (err *UnseenCategoryError) Error() string {
	return fmt.Sprintf(
		"%s: unseen category %q in column %s", err.UID, err.Value, err.Column)
}

// InsufficientDataError is reported by estimators when the training
// dataset is empty or degenerate for the requested operation.
type InsufficientDataError struct {
	UID    string
	Reason string
}

func (err *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: insufficient data: %s", err.UID, err.Reason)
}

type UnknownKindError struct {
	Kind string
}

func (err *UnknownKindError) Error() string {
	return fmt.Sprintf("unknown stage kind %q", err.Kind)
}
