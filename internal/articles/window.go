package articles

import (
	"sync"

	"github.com/pders01/bulletin/internal/storage"
)

const DefaultPageSize = 10

// Window is the paginated prefix of a list. Only the page counter is stored;
// everything else is derived from the list passed in.
type Window struct {
	mu       sync.Mutex
	pageSize int
	page     int
	version  uint64
}

func NewWindow(pageSize int) *Window {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Window{pageSize: pageSize, page: 1}
}

func (w *Window) Page() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.page
}

func (w *Window) PageSize() int {
	return w.pageSize
}

// Displayed returns list[:min(page*P, len(list))].
func (w *Window) Displayed(list []*storage.Article) []*storage.Article {
	w.mu.Lock()
	end := w.page * w.pageSize
	w.mu.Unlock()
	if end > len(list) {
		end = len(list)
	}
	return list[:end:end]
}

func (w *Window) HasMore(total int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.page*w.pageSize < total
}

// LoadMore advances one page and reports whether it did. With nothing left to
// show it is a no-op.
func (w *Window) LoadMore(total int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.page*w.pageSize >= total {
		return false
	}
	w.page++
	return true
}

func (w *Window) Reset() {
	w.mu.Lock()
	w.page = 1
	w.mu.Unlock()
}

// Sync resets the window when version differs from the last one seen and
// reports whether it did.
func (w *Window) Sync(version uint64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if version == w.version {
		return false
	}
	w.version = version
	w.page = 1
	return true
}
