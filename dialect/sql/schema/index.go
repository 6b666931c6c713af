// Package schema inspects the database schema backing registered entities.
// The crudgen runtime never creates or migrates tables; this package only
// reports what the queries of the generated services would need.
package schema

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"ariga.io/atlas/sql/migrate"
	"ariga.io/atlas/sql/mysql"
	"ariga.io/atlas/sql/postgres"
	"ariga.io/atlas/sql/schema"
	"ariga.io/atlas/sql/sqlite"

	"github.com/syssam/crudgen"
	"github.com/syssam/crudgen/dialect"
	"github.com/syssam/crudgen/dialect/sql"
)

// Finding is a missing index detected by AnalyzeIndexes.
type Finding struct {
	Entity     string
	Table      string
	Column     string
	Message    string
	Suggestion string // DDL creating the index
}

func (f *Finding) String() string {
	return fmt.Sprintf("%s.%s: %s", f.Table, f.Column, f.Message)
}

// Report holds the findings of AnalyzeIndexes.
type Report struct {
	Findings []*Finding
}

// Empty reports whether no index is missing.
func (r *Report) Empty() bool {
	return len(r.Findings) == 0
}

// String returns a human-readable summary of the report.
func (r *Report) String() string {
	if r.Empty() {
		return "No issues found"
	}
	var sb strings.Builder
	for _, f := range r.Findings {
		sb.WriteString("  - ")
		sb.WriteString(f.String())
		if f.Suggestion != "" {
			sb.WriteString("\n      ")
			sb.WriteString(f.Suggestion)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// AnalyzeIndexes checks that the columns list queries sort and filter on,
// and the foreign keys join loaders select by, lead an index. With no
// entities given it analyzes every registered entity. The tables are read
// with the atlas inspector of the dialect of db.
//
//	report, err := schema.AnalyzeIndexes(ctx, drv)
//	if err != nil {
//	    return err
//	}
//	if !report.Empty() {
//	    log.Warn("missing indexes", "report", report)
//	}
func AnalyzeIndexes(ctx context.Context, db sql.Querier, entities ...*crudgen.EntityMeta) (*Report, error) {
	if len(entities) == 0 {
		entities = crudgen.Registered()
	}
	tables, err := inspectTables(ctx, db, entities)
	if err != nil {
		return nil, err
	}
	report := &Report{}
	for _, m := range entities {
		analyze(m, tables, db.Dialect(), report)
	}
	return report, nil
}

// inspectTables reads the tables of entities and of the joins they load,
// keyed by name. Tables missing from the database are left out.
func inspectTables(ctx context.Context, db sql.Querier, entities []*crudgen.EntityMeta) (map[string]*schema.Table, error) {
	var open func(schema.ExecQuerier) (migrate.Driver, error)
	switch dialect.Normalize(db.Dialect()) {
	case dialect.Postgres:
		open = postgres.Open
	case dialect.MySQL:
		open = mysql.Open
	case dialect.SQLite:
		open = sqlite.Open
	default:
		return nil, fmt.Errorf("unsupported dialect %q", db.Dialect())
	}
	drv, err := open(db)
	if err != nil {
		return nil, fmt.Errorf("opening %s inspector: %w", db.Dialect(), err)
	}
	var names []string
	for _, m := range entities {
		names = append(names, m.Table)
		for _, j := range m.Joins {
			names = append(names, j.Table)
		}
	}
	slices.Sort(names)
	s, err := drv.InspectSchema(ctx, "", &schema.InspectOptions{Tables: slices.Compact(names)})
	if err != nil {
		return nil, fmt.Errorf("inspecting tables: %w", err)
	}
	tables := make(map[string]*schema.Table, len(s.Tables))
	for _, t := range s.Tables {
		tables[t.Name] = t
	}
	return tables, nil
}

func analyze(m *crudgen.EntityMeta, tables map[string]*schema.Table, d string, report *Report) {
	check := func(table, pk, col, reason string) {
		if col == pk || slices.Contains(leadingColumns(tables[table]), col) {
			return
		}
		for _, f := range report.Findings {
			if f.Table == table && f.Column == col {
				return
			}
		}
		report.Findings = append(report.Findings, &Finding{
			Entity:     m.Name,
			Table:      table,
			Column:     col,
			Message:    reason + " column has no index",
			Suggestion: fmt.Sprintf("CREATE INDEX idx_%s_%s ON %s (%s);", table, col, table, col),
		})
	}
	for _, col := range m.Sortable {
		check(m.Table, m.PrimaryKey, col, "sortable")
	}
	for _, col := range m.Filterable {
		check(m.Table, m.PrimaryKey, col, "filterable")
	}
	for _, j := range m.Joins {
		if j.Kind == crudgen.BelongsTo {
			continue
		}
		check(j.Table, j.PrimaryKey, j.Column, "join "+j.Name+" foreign key")
	}
	if len(m.Fulltext) > 0 {
		checkFulltext(m, tables[m.Table], d, report)
	}
}

// leadingColumns returns the first column of every index of t, the primary
// key included.
func leadingColumns(t *schema.Table) []string {
	if t == nil {
		return nil
	}
	indexes := t.Indexes
	if t.PrimaryKey != nil {
		indexes = append([]*schema.Index{t.PrimaryKey}, indexes...)
	}
	var cols []string
	for _, idx := range indexes {
		if len(idx.Parts) > 0 && idx.Parts[0].C != nil {
			cols = append(cols, idx.Parts[0].C.Name)
		}
	}
	return cols
}

func checkFulltext(m *crudgen.EntityMeta, t *schema.Table, d string, report *Report) {
	var (
		suggestion string
		match      func(*schema.Index) bool
	)
	switch dialect.Normalize(d) {
	case dialect.Postgres:
		lang := m.FulltextLanguage
		if lang == "" {
			lang = "english"
		}
		parts := make([]string, len(m.Fulltext))
		for i, c := range m.Fulltext {
			parts[i] = fmt.Sprintf("coalesce(%s, '')", c)
		}
		suggestion = fmt.Sprintf("CREATE INDEX idx_%s_fts ON %s USING GIN (to_tsvector('%s', %s));",
			m.Table, m.Table, lang, strings.Join(parts, " || ' ' || "))
		match = func(idx *schema.Index) bool {
			return slices.ContainsFunc(idx.Parts, func(p *schema.IndexPart) bool {
				x, ok := p.X.(*schema.RawExpr)
				return ok && strings.Contains(x.X, "to_tsvector")
			})
		}
	case dialect.MySQL:
		suggestion = fmt.Sprintf("CREATE FULLTEXT INDEX idx_%s_fts ON %s (%s);",
			m.Table, m.Table, strings.Join(m.Fulltext, ", "))
		match = func(idx *schema.Index) bool {
			if !slices.ContainsFunc(idx.Attrs, fulltextType) {
				return false
			}
			cols := make([]string, 0, len(idx.Parts))
			for _, p := range idx.Parts {
				if p.C != nil {
					cols = append(cols, p.C.Name)
				}
			}
			for _, c := range m.Fulltext {
				if !slices.Contains(cols, c) {
					return false
				}
			}
			return true
		}
	default:
		// Search falls back to LIKE, which no index serves.
		return
	}
	if t != nil && slices.ContainsFunc(t.Indexes, match) {
		return
	}
	report.Findings = append(report.Findings, &Finding{
		Entity:     m.Name,
		Table:      m.Table,
		Column:     strings.Join(m.Fulltext, ","),
		Message:    "fulltext columns have no search index",
		Suggestion: suggestion,
	})
}

func fulltextType(a schema.Attr) bool {
	t, ok := a.(*mysql.IndexType)
	return ok && strings.EqualFold(t.T, "FULLTEXT")
}
