// Package exporter turns the newest matching model artifact into C source.
//
// An export runs five steps, each a separate function with an explicit
// result:
//
//  1. Select the newest artifact matching the filter (artifact.Select)
//  2. Load and validate the model (forest.Load)
//  3. Translate it to C (codegen.Translator)
//  4. Write the source, and optionally a header, overwriting old files
//  5. Describe the result: on-disk size, a preview of the written file and
//     the manual integration checklist
//
// A failing step stops the export. Nothing is written unless selection,
// loading and translation all succeed.
package exporter
