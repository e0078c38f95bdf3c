// Package queryes renders compiled queries as Elasticsearch query DSL.
//
// Factory implements query.Factory[Query]. Comparisons become term and range
// queries, connectives become bool queries:
//
//	prio>3 or title:x  →  {"bool":{"minimum_should_match":1,"should":[
//	                         {"range":{"prio":{"gt":3}}},{"term":{"title":"x"}}]}}
//
// Connectives use filter context; nothing is scored.
package queryes
