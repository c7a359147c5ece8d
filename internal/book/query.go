package book

// Field is a filterable book attribute.
type Field string

const (
	FieldPrice  Field = "price"
	FieldName   Field = "name"
	FieldAuthor Field = "author"
)

// Op is a condition operator.
type Op string

const (
	OpGTE      Op = "gte"
	OpLTE      Op = "lte"
	OpContains Op = "contains" // case-sensitive substring
)

// Condition constrains one field. Value is a float64 for OpGTE/OpLTE and a
// string for OpContains.
type Condition struct {
	Field Field
	Op    Op
	Value any
}

// Conjunction holds conditions that must all hold.
type Conjunction []Condition

// Predicate is a storage-neutral query in disjunctive normal form: a
// record matches when any conjunction matches. A Predicate with no
// conjunctions matches every record.
type Predicate struct {
	Any []Conjunction
}

// MatchAll reports whether p places no restriction.
func (p Predicate) MatchAll() bool {
	return len(p.Any) == 0
}

// Translate converts a parsed spec into a Predicate. Empty groups add no
// disjunct, so a spec made only of empty groups matches everything.
func Translate(spec FilterSpec) Predicate {
	var p Predicate
	for _, g := range spec {
		if g.IsEmpty() {
			continue
		}
		var c Conjunction
		if g.From != nil {
			c = append(c, Condition{Field: FieldPrice, Op: OpGTE, Value: *g.From})
		}
		if g.To != nil {
			c = append(c, Condition{Field: FieldPrice, Op: OpLTE, Value: *g.To})
		}
		if g.Name != "" {
			c = append(c, Condition{Field: FieldName, Op: OpContains, Value: g.Name})
		}
		if g.Author != "" {
			c = append(c, Condition{Field: FieldAuthor, Op: OpContains, Value: g.Author})
		}
		p.Any = append(p.Any, c)
	}
	return p
}
