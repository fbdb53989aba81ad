// Package compiler turns outline text into a bibliographic entity graph.
//
// One call to Compile is one single-threaded pass over the outline:
//
//	outline.Scanner -> contrib.Classifier -> builder -> assembler -> Target
//
// The builder keeps the current depth and one cursor per depth (the last node
// placed there) and derives two edge kinds from marker depth alone:
// Aggregation (parent contains child) and Sequence (sibling follows sibling).
// Every Work is created together with its Expression, and every Aggregation
// and Sequence edge is written in both Work space and Expression space.
//
// Topology is first recorded in an ir.Graph arena, which rejects any edge that
// would give a node a second parent or a second sibling link, and only then
// written to the Target. Compile performs no transaction handling itself;
// store.(*Store).Compile wraps a whole pass in one transaction.
package compiler
