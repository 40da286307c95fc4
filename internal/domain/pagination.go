package domain

// PaginationParams holds offset-based pagination parameters for list queries.
// A zero PageSize asks for every row.
type PaginationParams struct {
	Page     int
	PageSize int
}

// Offset returns the row offset for the current page (0-based).
func (p PaginationParams) Offset() int {
	if p.Page < 1 || p.PageSize < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// Limit returns the SQL LIMIT argument. nil binds as LIMIT NULL, which Postgres reads as no limit.
func (p PaginationParams) Limit() any {
	if p.PageSize < 1 {
		return nil
	}
	return p.PageSize
}

// Slice returns the page of items selected by p.
func Slice[T any](items []T, p PaginationParams) []T {
	if p.PageSize < 1 {
		return items
	}
	start := min(p.Offset(), len(items))
	end := min(start+p.PageSize, len(items))
	return items[start:end]
}
