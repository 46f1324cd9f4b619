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


// Package storage defines the chunk repository abstraction backing the
// local vector index and search.
//
// The interface lives here so higher layers depend on behavior rather
// than on BadgerDB; the storage/badger sub-package provides the concrete
// implementation. Values are serialized with the MUS binary format,
// which keeps records compact even with embedding vectors attached.
package storage
