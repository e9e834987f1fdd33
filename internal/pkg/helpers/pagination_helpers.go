package helpers

import "github.com/yigit/schooldesk/internal/app/models/dto"

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Window is a normalized 1-based page request
type Window struct {
	Page int
	Size int
}

// NewWindow clamps page to >= 1 and size to 1..MaxPageSize, falling back to DefaultPageSize
func NewWindow(page, size int) Window {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > MaxPageSize {
		size = DefaultPageSize
	}
	return Window{Page: page, Size: size}
}

func (w Window) Offset() uint64 { return uint64((w.Page - 1) * w.Size) }
func (w Window) Limit() uint64  { return uint64(w.Size) }

// Info describes the window against a total row count. An empty result still has one page.
func (w Window) Info(totalItems int64) dto.PaginationInfo {
	pages := int((totalItems + int64(w.Size) - 1) / int64(w.Size))
	if pages < 1 {
		pages = 1
	}
	return dto.PaginationInfo{
		CurrentPage: w.Page,
		TotalPages:  pages,
		PageSize:    w.Size,
		TotalItems:  totalItems,
	}
}
