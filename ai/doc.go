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


// Package ai provides the embedding service abstraction for Passage.
//
// The embedding and search stages depend on the Embedder interface rather
// than a concrete API client, so the same pipeline runs against OpenAI,
// a local OpenAI-compatible server (Ollama, vLLM), or a test double.
//
// Sub-packages:
//
//   - ai/openai: production implementation over OpenAI-compatible APIs,
//     with retry and backoff handled inside the adapter
//   - ai/mock: deterministic test double with behavior injection
//
// Public constructors return the Embedder interface; mock constructors
// return concrete types so tests can inject behavior and assert call
// counts.
package ai
