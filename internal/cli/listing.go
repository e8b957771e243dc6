package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crestline-labs/backoffice/pkg/console"
	"github.com/crestline-labs/backoffice/pkg/dynquery"
)

// addListFlags wires the query-builder flags shared by every list command.
func addListFlags(cmd *cobra.Command, defaultSearchField string) {
	cmd.Flags().StringP("search", "s", "", "search text (contains match)")
	cmd.Flags().String("search-field", defaultSearchField, "field the search text applies to")
	cmd.Flags().String("sort", "", "sort as field:asc or field:desc")
	cmd.Flags().Int("page", 0, "zero-based page index")
	cmd.Flags().Int("page-size", 20, "page size")
}

// listPage drives a list view from the command flags. The builder decides
// whether the request goes to the plain or the dynamic endpoint.
func listPage[T any](cmd *cobra.Command, client *console.Client, resource string) (*dynquery.PaginatedResponse[T], error) {
	search, _ := cmd.Flags().GetString("search")
	searchField, _ := cmd.Flags().GetString("search-field")
	sortSpec, _ := cmd.Flags().GetString("sort")
	page, _ := cmd.Flags().GetInt("page")
	pageSize, _ := cmd.Flags().GetInt("page-size")

	builder := dynquery.NewBuilder(searchField, dynquery.WithPageSize(pageSize))
	defer builder.Close()

	if search != "" {
		builder.OnSearchTextChange(search)
		builder.FlushSearch()
	}
	if sortSpec != "" {
		field, dir, ok := strings.Cut(sortSpec, ":")
		if !ok {
			dir = dynquery.DirAsc
		}
		if dir != dynquery.DirAsc && dir != dynquery.DirDesc {
			return nil, fmt.Errorf("invalid sort direction %q, want asc or desc", dir)
		}
		builder.OnSort(field, dir)
	}
	if page > 0 {
		builder.OnPageChange(page, pageSize)
	}

	q := builder.Request()
	if builder.Mode() == dynquery.ModeDynamic {
		return console.ListDynamic[T](cmd.Context(), client, resource, q)
	}
	return console.List[T](cmd.Context(), client, resource, q.PageIndex, q.PageSize)
}

func pageFooter(pageIndex, totalPages, totalCount int) {
	info("Page %d of %d (%d total)", pageIndex+1, max(totalPages, 1), totalCount)
}
