package storage

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// ListOptions carries pagination, sorting and search input for list queries.
// Sort is a comma list of JSON field names, "-" prefix meaning descending;
// only fields present in the repository's allow-list are honored.
type ListOptions struct {
	Page       int
	Limit      int
	Sort       string
	SearchTerm string
}

func ParseListOptions(q url.Values) ListOptions {
	opts := ListOptions{
		Page:       defaultPage,
		Limit:      defaultLimit,
		Sort:       strings.TrimSpace(q.Get("sort")),
		SearchTerm: strings.TrimSpace(q.Get("searchTerm")),
	}
	if n, err := strconv.Atoi(q.Get("page")); err == nil && n > 0 {
		opts.Page = n
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 {
		opts.Limit = n
		if opts.Limit > maxLimit {
			opts.Limit = maxLimit
		}
	}
	return opts
}

func (o ListOptions) Offset() int {
	return (o.Page - 1) * o.Limit
}

// OrderBy renders an ORDER BY clause from the sort expression using the
// field-to-column allow-list, falling back to the given clause when nothing
// valid remains. The returned string is safe to splice into SQL because only
// allow-listed column names are emitted.
func (o ListOptions) OrderBy(allowed map[string]string, fallback string) string {
	var parts []string
	for _, raw := range strings.Split(o.Sort, ",") {
		field := strings.TrimSpace(raw)
		if field == "" {
			continue
		}
		desc := strings.HasPrefix(field, "-")
		field = strings.TrimPrefix(field, "-")
		col, ok := allowed[field]
		if !ok {
			continue
		}
		if desc {
			parts = append(parts, col+" DESC")
		} else {
			parts = append(parts, col+" ASC")
		}
	}
	if len(parts) == 0 {
		return fallback
	}
	return strings.Join(parts, ", ")
}

// TotalPages computes the page count for a result set of the given size.
func (o ListOptions) TotalPages(total int) int {
	if o.Limit <= 0 || total <= 0 {
		return 0
	}
	return (total + o.Limit - 1) / o.Limit
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
