// Package pagination implements the offset paging contract of the discovery
// feed: callers overfetch one extra row to learn whether more results exist
// without a separate count query.
package pagination

// Page is a sanitized limit/offset pair.
type Page struct {
	Limit  int
	Offset int
}

// Clamp normalizes raw client paging input. Non-positive limits fall back to
// def, limits above max are capped, negative offsets become zero.
func Clamp(limit, offset, def, max int) Page {
	if limit <= 0 {
		limit = def
	}
	if max > 0 && limit > max {
		limit = max
	}
	if offset < 0 {
		offset = 0
	}
	return Page{Limit: limit, Offset: offset}
}

// TrimOverfetch takes a slice fetched with limit+1 and returns at most limit
// items plus whether an extra row was present.
func TrimOverfetch[T any](items []T, limit int) ([]T, bool) {
	if len(items) > limit {
		return items[:limit], true
	}
	return items, false
}
