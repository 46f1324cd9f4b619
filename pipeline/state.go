// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package pipeline

import (
	"encoding/json"
	"sort"
)

// State is the persisted record of which work items have completed and
// which have failed. It is the sole source of truth for resume decisions:
// an id present in the completed set is skipped by incremental runs.
//
// The completed and failed sets are kept disjoint: marking an item
// completed removes any earlier failure record, and marking an item failed
// is a no-op while it remains completed.
type State struct {
	completed    map[string]struct{}
	failed       map[string]struct{}
	fingerprints map[string]string
}

// NewState returns an empty progress state.
func NewState() *State {
	return &State{
		completed:    make(map[string]struct{}),
		failed:       make(map[string]struct{}),
		fingerprints: make(map[string]string),
	}
}

// Completed reports whether the item has been marked completed.
func (s *State) Completed(id string) bool {
	_, ok := s.completed[id]
	return ok
}

// Failed reports whether the item is currently marked failed.
func (s *State) Failed(id string) bool {
	_, ok := s.failed[id]
	return ok
}

// MarkCompleted records a successful item, clearing any failure record.
func (s *State) MarkCompleted(id string) {
	s.completed[id] = struct{}{}
	delete(s.failed, id)
}

// MarkFailed records a failed item. Items already completed stay
// completed; a stale failure cannot shadow a success.
func (s *State) MarkFailed(id string) {
	if _, ok := s.completed[id]; ok {
		return
	}
	s.failed[id] = struct{}{}
}

// SetFingerprint records a content fingerprint for an item, used by the
// chunking stage to detect changed transcripts between runs.
func (s *State) SetFingerprint(id, fingerprint string) {
	s.fingerprints[id] = fingerprint
}

// FingerprintFor returns the recorded fingerprint for an item, or "".
func (s *State) FingerprintFor(id string) string {
	return s.fingerprints[id]
}

// CompletedCount returns the number of completed items.
func (s *State) CompletedCount() int {
	return len(s.completed)
}

// FailedIDs returns the failed ids in sorted order.
func (s *State) FailedIDs() []string {
	return sortedKeys(s.failed)
}

// CompletedIDs returns the completed ids in sorted order.
func (s *State) CompletedIDs() []string {
	return sortedKeys(s.completed)
}

func sortedKeys(set map[string]struct{}) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// stateJSON is the persisted representation. The historical chunking
// stage wrote {"processed": [...], "failed": [...]}; both key shapes are
// accepted on load, and the current shape is written on save.
type stateJSON struct {
	CompletedIDs []string          `json:"completed_ids"`
	FailedIDs    []string          `json:"failed_ids"`
	Fingerprints map[string]string `json:"fingerprints,omitempty"`

	// Legacy keys, read-only.
	Processed    []string `json:"processed,omitempty"`
	LegacyFailed []string `json:"failed,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (s *State) MarshalJSON() ([]byte, error) {
	out := stateJSON{
		CompletedIDs: s.CompletedIDs(),
		FailedIDs:    s.FailedIDs(),
	}
	if len(s.fingerprints) > 0 {
		out.Fingerprints = s.fingerprints
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler. Legacy "processed"/"failed"
// keys are merged into the completed and failed sets.
func (s *State) UnmarshalJSON(data []byte) error {
	var in stateJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	s.completed = make(map[string]struct{}, len(in.CompletedIDs)+len(in.Processed))
	s.failed = make(map[string]struct{}, len(in.FailedIDs)+len(in.LegacyFailed))
	s.fingerprints = in.Fingerprints
	if s.fingerprints == nil {
		s.fingerprints = make(map[string]string)
	}

	for _, id := range in.CompletedIDs {
		s.completed[id] = struct{}{}
	}
	for _, id := range in.Processed {
		s.completed[id] = struct{}{}
	}
	for _, id := range in.FailedIDs {
		s.MarkFailed(id)
	}
	for _, id := range in.LegacyFailed {
		s.MarkFailed(id)
	}
	return nil
}
