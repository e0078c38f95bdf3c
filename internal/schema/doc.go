// Package schema describes the entities the query compiler runs against.
//
// An Entity is an ordered set of typed fields plus the default search fields
// used for free-text terms. Field types decide how a raw query value is
// transformed into an ir.IRValue. Entities are grouped in a Registry so that
// reference fields can be followed into other entities.
//
// Descriptors are loaded from YAML or CUE files of the same shape:
//
//	entities:
//	  - name: task
//	    table: tasks
//	    fields:
//	      - {name: title, type: string}
//	      - {name: project, type: reference, ref: project}
//	    search:
//	      - {field: title, mode: like}
//
// Descriptors are read-only after loading and safe for concurrent use.
package schema
