// Package vectorstore defines the vector index boundary the upload and
// search stages depend on.
//
// Sub-packages:
//
//   - vectorstore/pinecone: REST client for a Pinecone serverless index
//   - vectorstore/local: BadgerDB-backed index for fully offline use
package vectorstore
