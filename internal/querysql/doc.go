// Package querysql renders compiled queries as parameterized SQLite
// statements using goqu.
//
// Factory implements query.Factory[Condition]. Each Condition carries its
// goqu expression plus the LEFT JOINs needed by dotted field paths, so the
// statement builder can emit one SELECT per query:
//
//	project.name:core  →  LEFT JOIN `project` AS `j_project` ON (`j_project`.`id` = `tasks`.`project`)
//	                      WHERE (`j_project`.`name` = ?)
//
// CRITICAL: every statement ends in ORDER BY id COLLATE BINARY so results
// are deterministic, and every value is a placeholder, never interpolated.
package querysql
