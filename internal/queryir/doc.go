// Package queryir provides the backend-neutral constraint tree produced by
// the query compiler.
//
// The tree is the reference rendering of a compiled query. Every other
// backend (SQL, MongoDB, Elasticsearch) renders the same compiler calls into
// its native filter, so the tree doubles as the shared vocabulary for tests,
// golden files and the CLI.
//
// ARCHITECTURE:
//
//	[query text] → [query.Compiler] → Factory → [Node tree]
//	                               → querysql.Factory   → [goqu expression]
//	                               → querymongo.Factory → [bson.D]
//	                               → queryes.Factory    → [ES DSL map]
//
// NODE TYPES:
//
// Leaves:
//   - Compare(field, op, value) - field compared to a literal value
//   - Filled(field) / NotFilled(field) - field presence
//   - Search(field, mode, word) - free-text match against a search field
//
// Combinators:
//   - Not(node)
//   - And(nodes...) / Or(nodes...)
//
// PORTABLE FRAGMENT:
//
// Validate reports features that not every backend renders identically:
// comparisons against null, ordering on booleans, container values and
// nested mappings (joins exist only in the SQL backend).
//
// Match evaluates a tree against an in-memory record; it serves as the
// executable reference semantics in tests.
package queryir
