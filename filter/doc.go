// Package filter turns list request parameters into validated conditions,
// sort keys and a pagination window, and translates them into squirrel
// statements for the generated List operations.
//
// Every column a request names must be registered in the EntityMeta of the
// entity: filterable columns for conditions, sortable columns for sort keys,
// like-eligible columns for the _like suffix. A relation.column key reaches
// the filterable and sortable columns declared on a join:
//
//	q, err := filter.Parse(AuthorMeta, r.URL.Query())
//	if err != nil {
//	    return err // *filter.Error, a crudgen.ValidationError
//	}
//	sb, err := q.SelectBuilder(AuthorMeta, db.Dialect())
//
// Conditions on related columns become EXISTS subqueries. Sorting by a
// related column orders by the smallest related value.
package filter
