// Package codegen translates tree-ensemble models into dependency-free C.
//
// The generated source defines one scoring function
//
//	double <name>(double * input)
//
// that evaluates every tree with nested if/else blocks and combines the
// leaf values exactly as forest.Model.Predict does: the leaves are summed
// in tree order, the sum is divided by the tree count for mean
// aggregation, and the base score is added last. The source needs no
// system headers and no heap.
//
// The file skeleton comes from embedded text/template files; tree bodies
// are emitted by a recursive writer.
package codegen
