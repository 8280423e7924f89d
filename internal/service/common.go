package service

import (
	"context"
	"log"
	"time"
)

// CacheInvalidator drops cached responses after a write.  The response
// cache middleware implements it.
type CacheInvalidator interface {
	Purge(ctx context.Context) error
}

// Page is one page of a paginated listing.  Number is 1-based.
type Page[T any] struct {
	Items  []T
	Number int
	Size   int
	Total  int
}

// Pages returns the number of pages, at least 1.
func (p Page[T]) Pages() int {
	if p.Size <= 0 || p.Total == 0 {
		return 1
	}
	return (p.Total + p.Size - 1) / p.Size
}

func (p Page[T]) HasNext() bool { return p.Number < p.Pages() }
func (p Page[T]) HasPrev() bool { return p.Number > 1 }

// PageOf cuts page number n of size out of items held in memory.  Out of
// range pages are clamped to the last one.
func PageOf[T any](items []T, n, size int) Page[T] {
	p := Page[T]{Number: n, Size: size, Total: len(items)}
	if p.Number > p.Pages() {
		p.Number = p.Pages()
	}
	p.Number, _ = normalizePage(p.Number, size)
	lo := (p.Number - 1) * size
	hi := lo + size
	if size <= 0 || hi > len(items) {
		hi = len(items)
	}
	if lo > hi {
		lo = hi
	}
	p.Items = items[lo:hi]
	return p
}

// normalizePage clamps a requested page number and returns the page
// number and SQL offset.
func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	return page, (page - 1) * size
}

// sideEffectTimeout bounds event publishing and cache purges, which run
// after the request's own work has committed.
const sideEffectTimeout = 3 * time.Second

// afterCommit runs fn with a context that survives the request being
// cancelled.  Failures are logged, never returned.
func afterCommit(ctx context.Context, what string, fn func(context.Context) error) {
	if fn == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		log.Printf("%s: %v", what, err)
	}
}

func purgeFunc(c CacheInvalidator) func(context.Context) error {
	if c == nil {
		return nil
	}
	return c.Purge
}
