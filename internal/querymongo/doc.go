// Package querymongo renders compiled queries as MongoDB filter documents.
//
// Factory implements query.Factory[bson.D]. Dotted field paths are passed
// through as Mongo dotted paths, so they address embedded documents rather
// than references:
//
//	prio>3 !done:true  →  {"$and": [{"prio": {"$gt": 3}}, {"$nor": [{"done": true}]}]}
//
// Render produces relaxed Extended JSON for logs, goldens and the CLI.
package querymongo
