package cypher

// Operator is a comparison, assignment or filter operator usable in WHERE and
// SET conditions.
type Operator string

const (
	OpAssignment  Operator = "="
	OpEqual       Operator = "="
	OpGeqThan     Operator = ">="
	OpGreaterThan Operator = ">"
	OpInequal     Operator = "<>"
	OpLabelFilter Operator = ":"
	OpLessThan    Operator = "<"
	OpLeqThan     Operator = "<="
	OpNotEqual    Operator = "!="
	OpIncrement   Operator = "+="
	OpIn          Operator = "IN"
)

var validOperators = map[Operator]struct{}{
	"=": {}, ">=": {}, ">": {}, "<>": {}, ":": {}, "<": {}, "<=": {}, "!=": {}, "+=": {}, "IN": {},
}

func (o Operator) valid() bool {
	_, ok := validOperators[o]
	return ok
}

// Order is a sort direction for OrderBy.
type Order string

const (
	Asc        Order = "ASC"
	Ascending  Order = "ASCENDING"
	Desc       Order = "DESC"
	Descending Order = "DESCENDING"
)

// whereKeyword is the boolean connective in front of a WHERE condition.
type whereKeyword string

const (
	kwWhere whereKeyword = "WHERE"
	kwAnd   whereKeyword = "AND"
	kwOr    whereKeyword = "OR"
	kwXor   whereKeyword = "XOR"
)
