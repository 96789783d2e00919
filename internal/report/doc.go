// Package report renders scan results.
//
// A Document is built once from the clustering output and can be written as
// plain text (the classic "--- N duplicates ---" blocks), a go-pretty table,
// JSON or YAML. Colour is a property of the Display passed to each writer so
// output to a file and to a terminal can be rendered differently in the same
// run.
package report
