// Package store provides a SQLite store for entity rows described by a
// schema registry. It executes the statements produced by querysql.
//
// Each entity gets one table named by Entity.TableName with one column per
// field. Column affinity follows the field type:
//   - int, bool, reference: INTEGER (bools stored as 0/1)
//   - reference_list: TEXT holding a canonical JSON array of keys
//   - everything else: TEXT (temporal values in their canonical layout)
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// All reads follow the ordering of the compiled statement, which always ends
// in ORDER BY id COLLATE BINARY.
package store
