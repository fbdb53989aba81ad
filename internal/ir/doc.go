// Package ir provides the entity types of the folio bibliographic graph.
//
// This package contains type definitions and the node arena only. All other
// internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Entities are create-only: nothing here mutates a persisted record
//   - Topology lives in Graph, where single-parent and linked-sibling shape
//     hold by construction
//   - All JSON tags use snake_case
//   - Document order is an integer position, never a timestamp
//   - Outline text is identified by a domain-separated SHA-256 digest
package ir
