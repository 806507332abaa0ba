/*
Package ports defines the driven ports (interfaces) for toolhouse.

These interfaces decouple tool logic from external implementations, allowing
roll history to live in memory or in Redis without the tools noticing.

# Key Interfaces

  - HistoryStore: Persists and lists recent dice sessions.

RunHistoryStoreContract is a shared test suite every HistoryStore adapter runs.
*/
package ports
