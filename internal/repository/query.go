package repository

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/FitTrackBack/internal/models"
)

// PageRequest is an already validated page/page_size pair.
type PageRequest struct {
	Page     int
	PageSize int
}

// Skip saturates instead of overflowing, so an absurd page is simply past
// the end.
func (p PageRequest) Skip() int {
	if p.Page <= 1 || p.PageSize <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.PageSize {
		return math.MaxInt
	}
	return (p.Page - 1) * p.PageSize
}

func TotalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

func NewPage[T any](items []T, req PageRequest, total int) models.Page[T] {
	if items == nil {
		items = make([]T, 0)
	}
	return models.Page[T]{
		Items: items,
		PaginationMeta: models.PaginationMeta{
			Page:       req.Page,
			PageSize:   req.PageSize,
			TotalItems: total,
			TotalPages: TotalPages(total, req.PageSize),
		},
	}
}

// Filter accumulates AND-ed predicates with positional arguments.
type Filter struct {
	clauses []string
	args    []any
}

func NewFilter() *Filter {
	return &Filter{}
}

func (f *Filter) arg(value any) string {
	f.args = append(f.args, value)
	return fmt.Sprintf("$%d", len(f.args))
}

// Where adds a raw predicate; each "?" is replaced by the next placeholder.
func (f *Filter) Where(predicate string, values ...any) *Filter {
	for _, value := range values {
		predicate = strings.Replace(predicate, "?", f.arg(value), 1)
	}
	f.clauses = append(f.clauses, predicate)
	return f
}

func (f *Filter) Eq(column string, value any) *Filter {
	return f.Where(column+" = ?", value)
}

func (f *Filter) EqString(column, value string) *Filter {
	if value = strings.TrimSpace(value); value == "" {
		return f
	}
	return f.Eq(column, value)
}

func (f *Filter) EqInt64(column string, value *int64) *Filter {
	if value == nil {
		return f
	}
	return f.Eq(column, *value)
}

func (f *Filter) EqBool(column string, value *bool) *Filter {
	if value == nil {
		return f
	}
	return f.Eq(column, *value)
}

// Between adds an inclusive range; nil bounds are open.
func (f *Filter) Between(column string, from, to *time.Time) *Filter {
	if from != nil {
		f.Where(column+" >= ?", *from)
	}
	if to != nil {
		f.Where(column+" <= ?", *to)
	}
	return f
}

// Search matches term case-insensitively against any of the columns.
func (f *Filter) Search(term string, columns ...string) *Filter {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return f
	}
	placeholder := f.arg("%" + escapeLike(term) + "%")
	parts := make([]string, 0, len(columns))
	for _, column := range columns {
		parts = append(parts, fmt.Sprintf("%s ILIKE %s", column, placeholder))
	}
	f.clauses = append(f.clauses, "("+strings.Join(parts, " OR ")+")")
	return f
}

func (f *Filter) HasTag(column, tag string) *Filter {
	if tag = strings.TrimSpace(tag); tag == "" {
		return f
	}
	return f.Where("? = ANY("+column+")", tag)
}

func (f *Filter) SQL() string {
	if len(f.clauses) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(f.clauses, " AND ")
}

func (f *Filter) Args() []any {
	return append([]any(nil), f.args...)
}

// Page appends ORDER BY/LIMIT/OFFSET and returns the clause plus the full
// argument list.
func (f *Filter) Page(orderBy string, req PageRequest) (string, []any) {
	args := f.Args()
	args = append(args, req.PageSize, req.Skip())
	return fmt.Sprintf("ORDER BY %s LIMIT $%d OFFSET $%d", orderBy, len(args)-1, len(args)), args
}

func escapeLike(term string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
}

// pagedQuery counts the filtered rows, then fetches one page of them.
// from is everything after SELECT ... (table and joins).
func pagedQuery[T any](
	ctx context.Context,
	db DBTX,
	columns string,
	from string,
	filter *Filter,
	orderBy string,
	req PageRequest,
	scan func(pgx.Row) (T, error),
) (models.Page[T], error) {
	var total int
	countSQL := fmt.Sprintf("SELECT COUNT(*) FROM %s %s", from, filter.SQL())
	if err := db.QueryRow(ctx, countSQL, filter.Args()...).Scan(&total); err != nil {
		return models.Page[T]{}, err
	}

	pageClause, args := filter.Page(orderBy, req)
	listSQL := fmt.Sprintf("SELECT %s FROM %s %s %s", columns, from, filter.SQL(), pageClause)
	rows, err := db.Query(ctx, listSQL, args...)
	if err != nil {
		return models.Page[T]{}, err
	}
	defer rows.Close()

	items := make([]T, 0, req.PageSize)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return models.Page[T]{}, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return models.Page[T]{}, err
	}
	return NewPage(items, req, total), nil
}

// Assignments builds the SET list of a partial UPDATE.
type Assignments struct {
	sets []string
	args []any
}

func (a *Assignments) Set(column string, value any) {
	a.args = append(a.args, value)
	a.sets = append(a.sets, fmt.Sprintf("%s = $%d", column, len(a.args)))
}

// SetOptional assigns only when the field was present in the payload.
func SetOptional[T any](a *Assignments, column string, value models.Optional[T]) {
	if value.Set {
		a.Set(column, value.Arg())
	}
}

func (a *Assignments) Empty() bool { return len(a.sets) == 0 }

// Update renders "UPDATE table SET ... WHERE key = $n RETURNING returning".
func (a *Assignments) Update(table, key string, id any, touch bool, returning string) (string, []any) {
	sets := append([]string(nil), a.sets...)
	if touch {
		sets = append(sets, "updated_at = NOW()")
	}
	args := append(append([]any(nil), a.args...), id)
	return fmt.Sprintf(
		"UPDATE %s SET %s WHERE %s = $%d RETURNING %s",
		table, strings.Join(sets, ", "), key, len(args), returning,
	), args
}
