// Package command builds validated RouterOS API commands.
//
// A command is created through the Builder, which checks the command path
// and all attribute keys at construction time, before any I/O happens. The
// resulting Command is immutable; the connection layer assigns the
// correlation tag when the command is submitted.
//
// Query clauses compile to the operator-prefixed word forms understood by
// the device's query engine ("?key=value", "?>key=value", ...). Boolean
// combinators operate on a stack of preceding clause results; the Builder
// tracks the stack depth and rejects combinators with insufficient operands
// at build time.
package command
