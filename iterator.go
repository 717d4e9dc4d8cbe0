package graw

import (
	"context"
	"errors"

	"github.com/jamesprial/graw/internal"
	pkgerrs "github.com/jamesprial/graw/pkg/errors"
	"github.com/jamesprial/graw/pkg/types"
)

// LinksIterator walks a sorted link listing across pages.
type LinksIterator struct {
	it *internal.LinkIterator
}

// NewLinksIterator returns an iterator over the listing described by sort
// and request, starting at request.After. request is copied; later changes
// do not affect the iterator. Random listings cannot be iterated.
//
//	it := client.NewLinksIterator(ctx, graw.SortNew, &types.LinksRequest{
//		Subreddit:  "golang",
//		Pagination: types.Pagination{Limit: 100},
//	})
//	for it.HasNext() {
//		link, err := it.Next()
//		if errors.Is(err, graw.ErrNoMoreLinks) {
//			break
//		}
//		if err != nil {
//			return err
//		}
//		fmt.Println(link.Title)
//	}
func (c *Client) NewLinksIterator(ctx context.Context, sort LinkSort, request *types.LinksRequest) *LinksIterator {
	var base types.LinksRequest
	if request != nil {
		base = *request
	}
	base.Before = ""

	fetch := func(ctx context.Context, after string) (*types.LinksResponse, error) {
		if sort == internal.SortRandom {
			return nil, &pkgerrs.ArgumentError{Operation: "links.random", Message: "random listings cannot be iterated"}
		}
		page := base
		page.After = after
		return c.fetchLinks(ctx, sort, &page)
	}

	return &LinksIterator{it: internal.NewLinkIterator(ctx, base.After, fetch)}
}

// HasNext returns true if there may be more links.
func (it *LinksIterator) HasNext() bool { return it.it.HasNext() }

// Next returns the next link, fetching another page when needed. It returns
// ErrNoMoreLinks once the listing is exhausted.
func (it *LinksIterator) Next() (*types.Link, error) { return it.it.Next() }

// Err returns the error that stopped iteration, if any.
func (it *LinksIterator) Err() error { return it.it.Err() }

// Cursor returns the after cursor of the last fetched page, for resuming
// iteration later.
func (it *LinksIterator) Cursor() string { return it.it.Cursor() }

// Collect drains up to limit links (all when limit <= 0).
func (it *LinksIterator) Collect(limit int) ([]*types.Link, error) {
	var links []*types.Link
	for it.HasNext() && (limit <= 0 || len(links) < limit) {
		link, err := it.Next()
		if errors.Is(err, ErrNoMoreLinks) {
			break
		}
		if err != nil {
			return links, err
		}
		links = append(links, link)
	}
	return links, nil
}
