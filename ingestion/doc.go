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


// Package ingestion implements the chunking stage: it reads fetched
// transcripts from a directory, splits each one into duration-bounded
// chunks, enriches the chunks with video metadata, and writes the chunk
// document the embedding stage consumes.
//
// Transcripts are independent, so they are chunked concurrently on a
// worker pool. Per-video progress is persisted with transcript content
// fingerprints: an incremental run skips videos already chunked unless
// their transcript content changed.
package ingestion
