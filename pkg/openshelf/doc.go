// Package openshelf implements a shared, versioned book catalog hosted
// on a remote object store with optimistic-concurrency file semantics.
//
// The catalog is a single JSON document stored as one file; there is no
// database. A stateless service performs revision-checked
// read-modify-write cycles against that document and sequences the two
// logically dependent writes of an upload (binary blob, then catalog
// entry) without a cross-write transaction. All mutual exclusion is
// delegated to the store's revision check; conflicting writers retry a
// bounded number of times and then fail.
package openshelf
