// Package pinecone implements the vectorstore.Upserter interface against
// the Pinecone serverless data-plane REST API.
package pinecone
