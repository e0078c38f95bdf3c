// Package query compiles textual queries into backend constraints.
//
// The language mixes free-text search with field operations:
//
//	parser bug                  free text, every word must match a search field
//	status:open prio>=3         implicit AND of two field operations
//	title:"a or b" or !done:-   quoted values, explicit OR, negation, "is filled"
//	due<-3d                     temporal delta against the compiler's clock
//	||date:2024-01-31||         tag dispatched to a registered handler
//	?? status:open              debug prefix, flagged on the result
//
// A Compiler is generic over the constraint type C produced by a Factory.
// The compiler never inspects C; it only combines nodes through the factory,
// so the same query compiles into a neutral tree (queryir), a goqu
// expression (querysql), a bson filter (querymongo) or an Elasticsearch DSL
// map (queryes).
//
// Compilers are immutable after construction and safe for concurrent use.
// Each Compile call owns its cursor and parser state.
package query
