// Package harness runs query scenarios: YAML files that compile a list of
// queries against an entity descriptor and check the output of every backend.
//
// # Scenario Format
//
//	name: task_queries
//	description: "What this scenario validates"
//	schema: ../schemas/tasks.yaml   # relative to the scenario file
//	entity: task
//	now: "2024-03-10T12:30:00Z"     # pins temporal shorthands
//	rows:                           # optional, seeded into SQLite
//	  task:
//	    - {id: 1, title: "Fix parser", prio: 3}
//	cases:
//	  - query: "prio>=3 !done:true"
//	    expect:
//	      ir: "and(gte(prio, 3), not(eq(done, true)))"
//	      sql: ["`tasks`.`prio` >= ?"]
//	      params: [3, 1]
//	      mongo: '{"$and": [...]}'
//	      es: '{"query": {...}}'
//	      rows: [1, 3]
//	      matches: [1, 3]
//
// # Expectations
//
// Every expectation is optional; omitted ones are not checked.
//
//   - ir: queryir.Format of the neutral tree
//   - portable: queryir.Validate verdict
//   - sql: substrings of the SQLite statement; params: its placeholder values
//   - mongo, es: JSON documents, compared structurally
//   - error: input error code (MISSING_OPERATOR, UNKNOWN_FIELD)
//   - debug: whether the query carried the ?? prefix
//   - rows: ids returned by executing the statement against the seeded rows
//   - matches: ids accepted by queryir.Match over the same rows
//
// # Deterministic Testing
//
// Every scenario runs in a fresh in-memory database with a clock pinned to
// `now`, so compiled output is identical across runs and can be compared
// against golden files in testdata/golden.
package harness
