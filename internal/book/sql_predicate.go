package book

import (
	"fmt"
	"strings"
)

// sqlDialect captures what differs between the SQL backends when a
// Predicate is rendered.
type sqlDialect struct {
	placeholder func(n int) string
	contains    func(column, placeholder string) string
}

var postgresDialect = sqlDialect{
	placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	contains: func(column, ph string) string {
		return fmt.Sprintf("strpos(%s, %s) > 0", column, ph)
	},
}

var sqliteDialect = sqlDialect{
	placeholder: func(int) string { return "?" },
	contains: func(column, ph string) string {
		return fmt.Sprintf("instr(%s, %s) > 0", column, ph)
	},
}

// sqlColumns whitelists the columns a Condition may reference.
var sqlColumns = map[Field]string{
	FieldPrice:  "price",
	FieldName:   "name",
	FieldAuthor: "author",
}

// renderSQLPredicate returns a WHERE body (without the keyword) and its
// bound arguments. The match-all predicate renders to "".
func renderSQLPredicate(p Predicate, d sqlDialect) (string, []any, error) {
	if p.MatchAll() {
		return "", nil, nil
	}
	var (
		groups []string
		args   []any
	)
	for _, conj := range p.Any {
		clauses := make([]string, 0, len(conj))
		for _, c := range conj {
			col, ok := sqlColumns[c.Field]
			if !ok {
				return "", nil, fmt.Errorf("unsupported filter field %q", c.Field)
			}
			args = append(args, c.Value)
			ph := d.placeholder(len(args))
			switch c.Op {
			case OpGTE:
				clauses = append(clauses, fmt.Sprintf("%s >= %s", col, ph))
			case OpLTE:
				clauses = append(clauses, fmt.Sprintf("%s <= %s", col, ph))
			case OpContains:
				clauses = append(clauses, d.contains(col, ph))
			default:
				return "", nil, fmt.Errorf("unsupported filter operator %q", c.Op)
			}
		}
		groups = append(groups, "("+strings.Join(clauses, " AND ")+")")
	}
	return strings.Join(groups, " OR "), args, nil
}
