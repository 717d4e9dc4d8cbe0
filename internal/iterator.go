package internal

import (
	"context"
	"errors"

	"github.com/jamesprial/graw/pkg/types"
)

// ErrNoMoreLinks is returned by LinkIterator.Next once the listing is exhausted.
var ErrNoMoreLinks = errors.New("no more links available")

// PageFunc fetches the listing page that follows the after cursor.
type PageFunc func(ctx context.Context, after string) (*types.LinksResponse, error)

// LinkIterator walks a link listing page by page, following the after
// cursor until Reddit stops returning one.
type LinkIterator struct {
	ctx       context.Context
	fetch     PageFunc
	buffer    []*types.Link
	bufferIdx int
	after     string
	hasMore   bool
	err       error
}

// NewLinkIterator creates an iterator that starts at the after cursor
// (empty for the first page).
func NewLinkIterator(ctx context.Context, after string, fetch PageFunc) *LinkIterator {
	return &LinkIterator{
		ctx:     ctx,
		fetch:   fetch,
		after:   after,
		hasMore: true,
	}
}

// HasNext returns true if there may be more links to iterate through.
func (it *LinkIterator) HasNext() bool {
	if it.err != nil {
		return false
	}
	return it.bufferIdx < len(it.buffer) || it.hasMore
}

// Next returns the next link, fetching another page when the buffer runs out.
func (it *LinkIterator) Next() (*types.Link, error) {
	if it.err != nil {
		return nil, it.err
	}

	for it.bufferIdx >= len(it.buffer) {
		if !it.hasMore {
			return nil, ErrNoMoreLinks
		}

		page, err := it.fetch(it.ctx, it.after)
		if err != nil {
			it.err = err
			return nil, err
		}

		it.buffer = page.Links
		it.bufferIdx = 0
		if page.After == "" || page.After == it.after {
			it.hasMore = false
		}
		it.after = page.After
	}

	link := it.buffer[it.bufferIdx]
	it.bufferIdx++
	return link, nil
}

// Err returns the error that stopped iteration, if any.
func (it *LinkIterator) Err() error {
	return it.err
}

// Cursor returns the after cursor of the last fetched page.
func (it *LinkIterator) Cursor() string {
	return it.after
}
