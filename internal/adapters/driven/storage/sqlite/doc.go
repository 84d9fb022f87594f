// Package sqlite is the default collection store: one database file at
// ~/.docchat/data/vectors.db holding every named collection, opened
// through modernc.org/sqlite so no cgo toolchain is needed.
//
// Each collection row records the embedding model and vector length it
// was created with. Records keep the document text, JSON metadata and
// the embedding as a little-endian float32 blob. Queries load the
// collection and rank it in process with storage/vector, which is fast
// enough for a directory of documents.
//
// The schema lives in migrations/ and is applied on open. The database
// runs in WAL mode so the MCP server and a CLI command can share it.
package sqlite
