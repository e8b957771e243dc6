package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/crestline-labs/backoffice/pkg/dynquery"
)

var (
	ErrUnknownField        = errors.New("unknown field")
	ErrUnsupportedOperator = errors.New("unsupported filter operator")
	ErrInvalidSortDir      = errors.New("invalid sort direction")
)

// sqlTranslator turns a DynamicQuery into SQL fragments. Every field name
// coming off the wire must map through the allow-list, so clients can never
// reference arbitrary columns.
type sqlTranslator struct {
	columns map[string]string
}

// where renders the filter tree as a parameterized WHERE clause body,
// appending bind values to args. Returns "" for a nil filter.
func (t sqlTranslator) where(f *dynquery.FilterDescriptor, args *[]any) (string, error) {
	if f == nil {
		return "", nil
	}

	if len(f.Filters) > 0 {
		logic := strings.ToUpper(f.Logic)
		if logic == "" {
			logic = "AND"
		}
		if logic != "AND" && logic != "OR" {
			return "", fmt.Errorf("%w: logic %q", ErrUnsupportedOperator, f.Logic)
		}
		parts := make([]string, 0, len(f.Filters))
		for _, child := range f.Filters {
			part, err := t.where(child, args)
			if err != nil {
				return "", err
			}
			parts = append(parts, part)
		}
		return "(" + strings.Join(parts, " "+logic+" ") + ")", nil
	}

	col, ok := t.columns[f.Field]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, f.Field)
	}
	if f.Operator != dynquery.OpContains {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedOperator, f.Operator)
	}

	*args = append(*args, "%"+escapeLike(f.Value)+"%")
	op := "ILIKE"
	if f.CaseSensitive {
		op = "LIKE"
	}
	// Cast so contains also works against non-text columns like timestamps.
	return fmt.Sprintf("%s::text %s $%d", col, op, len(*args)), nil
}

// orderBy renders the sort list as an ORDER BY body, or "" when unsorted.
func (t sqlTranslator) orderBy(sort []dynquery.SortDescriptor) (string, error) {
	if len(sort) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(sort))
	for _, s := range sort {
		col, ok := t.columns[s.Field]
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrUnknownField, s.Field)
		}
		switch s.Dir {
		case dynquery.DirAsc:
			parts = append(parts, col+" ASC")
		case dynquery.DirDesc:
			parts = append(parts, col+" DESC")
		default:
			return "", fmt.Errorf("%w: %q", ErrInvalidSortDir, s.Dir)
		}
	}
	return strings.Join(parts, ", "), nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// Allow-lists of sortable/filterable fields, keyed by the wire-level field
// names the console sends.
var (
	userColumns = sqlTranslator{columns: map[string]string{
		"email":     "u.email",
		"firstName": "u.first_name",
		"lastName":  "u.last_name",
		"createdAt": "u.created_at",
	}}

	contentColumns = sqlTranslator{columns: map[string]string{
		"title":     "c.title",
		"slug":      "c.slug",
		"status":    "c.status",
		"createdAt": "c.created_at",
		"updatedAt": "c.updated_at",
	}}

	mediaColumns = sqlTranslator{columns: map[string]string{
		"fileName":    "m.file_name",
		"contentType": "m.content_type",
		"createdAt":   "m.created_at",
	}}

	auditColumns = sqlTranslator{columns: map[string]string{
		"user":      "a.user_email",
		"action":    "a.action",
		"entity":    "a.entity",
		"entityId":  "a.entity_id",
		"details":   "a.details",
		"timestamp": "a.timestamp",
	}}
)
