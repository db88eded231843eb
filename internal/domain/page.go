package domain

// DefaultPageSize matches the ten posts per page the feeds show.
const (
	DefaultPageSize = 10
	MaxLimit        = 100
)

// Window is the slice of rows a list query fetches.
type Window struct {
	Offset int
	Limit  int
}

// Pager turns a total row count into the window to fetch. Counting first
// lets page numbers past the end clamp to the last page.
type Pager interface {
	Window(total int64) Window
}

// PageNumber is 1-based page navigation. Out-of-range numbers clamp.
type PageNumber struct {
	Number int
	Size   int
}

func (p PageNumber) Window(total int64) Window {
	size := p.Size
	if size <= 0 {
		size = DefaultPageSize
	}
	n := p.Number
	if n < 1 {
		n = 1
	}
	if last := numPages(total, size); n > last {
		n = last
	}
	return Window{Offset: (n - 1) * size, Limit: size}
}

// LimitOffset is REST-style paging. Offsets are not clamped.
type LimitOffset struct {
	Limit  int
	Offset int
}

func (p LimitOffset) Window(int64) Window {
	limit := p.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	offset := p.Offset
	if offset < 0 {
		offset = 0
	}
	return Window{Offset: offset, Limit: limit}
}

// Page is one window of a list plus navigation data.
type Page[T any] struct {
	Items       []T   `json:"items"`
	Total       int64 `json:"total"`
	Number      int   `json:"number"`
	NumPages    int   `json:"num_pages"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
	Offset      int   `json:"-"`
	Limit       int   `json:"-"`
}

// NewPage builds a page from fetched items.
func NewPage[T any](items []T, total int64, w Window) *Page[T] {
	if items == nil {
		items = []T{}
	}
	limit := w.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	return &Page[T]{
		Items:       items,
		Total:       total,
		Number:      w.Offset/limit + 1,
		NumPages:    numPages(total, limit),
		HasNext:     int64(w.Offset+limit) < total,
		HasPrevious: w.Offset > 0,
		Offset:      w.Offset,
		Limit:       limit,
	}
}

// MapPage converts the items of a page, keeping navigation data.
func MapPage[T, R any](p *Page[T], fn func(T) R) *Page[R] {
	items := make([]R, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, fn(it))
	}
	return &Page[R]{
		Items:       items,
		Total:       p.Total,
		Number:      p.Number,
		NumPages:    p.NumPages,
		HasNext:     p.HasNext,
		HasPrevious: p.HasPrevious,
		Offset:      p.Offset,
		Limit:       p.Limit,
	}
}

func numPages(total int64, size int) int {
	if total <= 0 {
		return 1
	}
	return int((total + int64(size) - 1) / int64(size))
}
