package filter

import (
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/syssam/crudgen"
	"github.com/syssam/crudgen/dialect"
	"github.com/syssam/crudgen/dialect/sql"
)

// SelectBuilder returns the statement selecting the window of rows matched
// by q, in the placeholder format of dialect d.
func (q *Query) SelectBuilder(meta *crudgen.EntityMeta, d string) (squirrel.SelectBuilder, error) {
	sb := sql.Builder(d).Select(meta.Columns...).From(meta.Table)
	sb, err := q.where(sb, meta, d)
	if err != nil {
		return sb, err
	}
	sorts := []Sort{{Column: defaultSort(meta), Direction: Asc}}
	if q != nil && len(q.Sort) > 0 {
		sorts = q.Sort
	}
	for _, s := range sorts {
		sb = sb.OrderBy(orderBy(meta, s))
	}
	offset, limit := q.Window()
	return sb.Offset(uint64(offset)).Limit(uint64(limit)), nil
}

// CountBuilder returns the statement counting all rows matched by q.
func (q *Query) CountBuilder(meta *crudgen.EntityMeta, d string) (squirrel.SelectBuilder, error) {
	return q.where(sql.Builder(d).Select("COUNT(*)").From(meta.Table), meta, d)
}

func (q *Query) where(sb squirrel.SelectBuilder, meta *crudgen.EntityMeta, d string) (squirrel.SelectBuilder, error) {
	if q == nil {
		return sb, nil
	}
	if err := q.Validate(meta); err != nil {
		return sb, err
	}
	if q.Search != "" {
		sb = sb.Where(Search(meta, d, q.Search))
	}
	for _, c := range q.Conditions {
		if c.Join == "" {
			sb = sb.Where(predicate(meta.Qualified(c.Column), c.Op, c.Value, d))
			continue
		}
		j, _ := meta.Join(c.Join)
		alias := joinAlias(j)
		sub := squirrel.Select("1").
			From(j.Table + " AS " + alias).
			Where(j.LinkAs(meta, alias)).
			Where(predicate(alias+"."+c.Column, c.Op, c.Value, d))
		sb = sb.Where(squirrel.Expr("EXISTS (?)", sub))
	}
	return sb, nil
}

func predicate(col string, op Op, v any, d string) squirrel.Sqlizer {
	switch op {
	case OpNeq:
		return squirrel.NotEq{col: v}
	case OpGt:
		return squirrel.Gt{col: v}
	case OpGte:
		return squirrel.GtOrEq{col: v}
	case OpLt:
		return squirrel.Lt{col: v}
	case OpLte:
		return squirrel.LtOrEq{col: v}
	case OpLike:
		like := "LIKE"
		if dialect.Normalize(d) == dialect.Postgres {
			like = "ILIKE"
		}
		return squirrel.Expr(col+" "+like+" ? ESCAPE "+escapeChar(d), containing(fmt.Sprint(v)))
	default:
		return squirrel.Eq{col: v}
	}
}

// likeEscaper makes the wildcards of a user term match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containing returns the LIKE pattern matching any value holding s.
func containing(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// escapeChar returns the ESCAPE literal naming a backslash. MySQL reads
// backslashes in string literals as escapes.
func escapeChar(d string) string {
	if dialect.Normalize(d) == dialect.MySQL {
		return `'\\'`
	}
	return `'\'`
}

func orderBy(meta *crudgen.EntityMeta, s Sort) string {
	if s.Join == "" {
		return meta.Qualified(s.Column) + " " + string(s.Direction)
	}
	j, _ := meta.Join(s.Join)
	alias := joinAlias(j)
	return fmt.Sprintf("(SELECT MIN(%s.%s) FROM %s AS %s WHERE %s) %s",
		alias, s.Column, j.Table, alias, j.LinkAs(meta, alias), s.Direction)
}

func joinAlias(j *crudgen.JoinMeta) string {
	return "j_" + j.Name
}

func defaultSort(meta *crudgen.EntityMeta) string {
	if meta.DefaultSort != "" {
		return meta.DefaultSort
	}
	return meta.PrimaryKey
}

// Search returns the free-text condition matching term against the
// fulltext columns of meta, in the strategy of dialect d:
//
//	postgres  to_tsvector(lang, ...) @@ plainto_tsquery(lang, term)
//	mysql     MATCH(...) AGAINST (term IN NATURAL LANGUAGE MODE)
//	others    case-insensitive LIKE on each column
func Search(meta *crudgen.EntityMeta, d, term string) squirrel.Sqlizer {
	cols := make([]string, len(meta.Fulltext))
	for i, c := range meta.Fulltext {
		cols[i] = meta.Qualified(c)
	}
	switch dialect.Normalize(d) {
	case dialect.Postgres:
		lang := quote(language(meta))
		parts := make([]string, len(cols))
		for i, c := range cols {
			parts[i] = "coalesce(" + c + ", '')"
		}
		return squirrel.Expr(fmt.Sprintf("to_tsvector(%s, %s) @@ plainto_tsquery(%s, ?)",
			lang, strings.Join(parts, " || ' ' || "), lang), term)
	case dialect.MySQL:
		return squirrel.Expr(fmt.Sprintf("MATCH(%s) AGAINST (? IN NATURAL LANGUAGE MODE)", strings.Join(cols, ", ")), term)
	default:
		pattern := containing(strings.ToLower(term))
		or := make(squirrel.Or, len(cols))
		for i, c := range cols {
			or[i] = squirrel.Expr("LOWER("+c+") LIKE ? ESCAPE "+escapeChar(d), pattern)
		}
		return or
	}
}

func language(meta *crudgen.EntityMeta) string {
	if meta.FulltextLanguage != "" {
		return meta.FulltextLanguage
	}
	return "english"
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
