/*
Package ports defines the driven ports (interfaces) of the expression migration engine.

These interfaces decouple the engine from the document database, the place where
pre-images are kept for rollback, and the coordination backend.

# Key Interfaces

  - DocumentStore: Finds candidate documents and replaces them by identifier (e.g. MongoDB or Memory).
  - BackupStore: Persists the pre-image set of a migration session for later rollback.
  - DistributedLocker: Prevents two committing sessions from running against the same collection.
*/
package ports
