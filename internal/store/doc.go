// Package store provides SQLite-backed durable storage for compiled
// bibliographic graphs.
//
// Each compilation runs through Store.Compile, which opens one transaction
// and hands the compiler a transaction-scoped Tx. Any failure rolls the
// whole compilation back, so a Manifestation is either fully present or
// absent.
//
// # Tables
//
//   - persons: shared across compilations, unique by exact display name
//   - manifestations, works, expressions, embodiments: created fresh by
//     every compilation, never updated
//   - work_relations, expression_relations: Aggregation and Sequence edges
//     in each space, kept in insertion order
//
// # Topology Constraints
//
//   - A node has at most one Aggregation parent
//   - A node has at most one Sequence successor and one predecessor
//   - A Manifestation has exactly one embodiment with a NULL position
//   - Positions within a Manifestation are unique
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
