// Package output formats CLI results.
//
// It supports table (default), json, and yaml output. Table rendering
// understands structs, slices of structs, and maps, with a wide mode
// for extra columns.
package output
