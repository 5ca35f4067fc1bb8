package storage

import (
	"net/url"
	"testing"
)

func TestParseListOptionsDefaults(t *testing.T) {
	opts := ParseListOptions(url.Values{})
	if opts.Page != 1 || opts.Limit != 10 {
		t.Fatalf("unexpected defaults: %+v", opts)
	}
	if opts.Offset() != 0 {
		t.Fatalf("expected offset 0, got %d", opts.Offset())
	}
}

func TestParseListOptionsClampsLimit(t *testing.T) {
	q := url.Values{"page": {"3"}, "limit": {"500"}}
	opts := ParseListOptions(q)
	if opts.Limit != 100 {
		t.Fatalf("expected limit clamped to 100, got %d", opts.Limit)
	}
	if opts.Offset() != 200 {
		t.Fatalf("expected offset 200, got %d", opts.Offset())
	}
}

func TestOrderByAllowList(t *testing.T) {
	allowed := map[string]string{
		"name":         "name",
		"pricePerHour": "price_per_hour",
		"createdAt":    "created_at",
	}

	opts := ListOptions{Sort: "-pricePerHour,name"}
	got := opts.OrderBy(allowed, "created_at DESC")
	if got != "price_per_hour DESC, name ASC" {
		t.Fatalf("unexpected order by: %q", got)
	}

	opts = ListOptions{Sort: "password_hash;DROP TABLE users"}
	got = opts.OrderBy(allowed, "created_at DESC")
	if got != "created_at DESC" {
		t.Fatalf("expected fallback for unknown sort field, got %q", got)
	}
}

func TestTotalPages(t *testing.T) {
	opts := ListOptions{Limit: 10}
	if n := opts.TotalPages(0); n != 0 {
		t.Fatalf("expected 0 pages, got %d", n)
	}
	if n := opts.TotalPages(10); n != 1 {
		t.Fatalf("expected 1 page, got %d", n)
	}
	if n := opts.TotalPages(11); n != 2 {
		t.Fatalf("expected 2 pages, got %d", n)
	}
}
