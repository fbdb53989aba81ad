// Package harness provides conformance testing for the outline compiler.
//
// A scenario names an outline, the book it belongs to, and what the compiled
// graph must look like. Each scenario compiles into a fresh in-memory SQLite
// store through the same transactional path as `folio compile`, then reads
// the graph back as a table of contents to evaluate assertions.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: nested_siblings
//	description: "Children chain; their parent does not"
//	root_title: "Book"
//	contributors: ["Ann Editor"]
//	jump_policy: orphan
//	outline: |
//	  # A
//	  ## B
//	  ## C
//	assertions:
//	  - type: aggregation
//	    from: A
//	    to: B
//	  - type: sequence
//	    from: B
//	    to: C
//	  - type: work_count
//	    count: 3
//
// A scenario may instead set expect_error to a compile error code such as
// E201, in which case compilation must fail with that code and leave the
// store empty.
//
// # Assertion Types
//
//   - work_count: number of Works created from headings
//   - orphan_count: number of headings left unreachable
//   - aggregation: from is the Aggregation parent of to ("" names the root)
//   - sequence: to directly follows from
//   - no_sequence: to does not directly follow from
//   - creators: the Work titled title credits names as creators, in order
//   - realizers: the Expression titled title credits names as realizers
//   - positions: titles lists every heading in embodiment position order
//
// # Deterministic Testing
//
// IDs come from testutil.SequentialIDs, so the rendered table of contents
// is identical across runs and can be compared against golden files with
// RunWithGolden.
package harness
