package graw

import (
	"context"
	"errors"

	"github.com/jamesprial/graw/internal"
	"github.com/jamesprial/graw/internal/logging"
	pkgerrs "github.com/jamesprial/graw/pkg/errors"
	"github.com/jamesprial/graw/pkg/types"
)

// maxRandomLinks caps FetchLinksRandom; each link costs one API call.
const maxRandomLinks = 100

// FetchLinksHot retrieves a page of a subreddit's hot links. request.Geo
// filters by region.
//
// Parameter errors (bad subreddit name, Limit above 100, both After and
// Before set) are reported as *errors.ArgumentError before any network
// activity. The returned After cursor feeds the next call.
func (c *Client) FetchLinksHot(ctx context.Context, request *types.LinksRequest) (*types.LinksResponse, error) {
	return c.fetchLinks(ctx, internal.SortHot, request)
}

// FetchLinksNew retrieves a page of a subreddit's newest links.
func (c *Client) FetchLinksNew(ctx context.Context, request *types.LinksRequest) (*types.LinksResponse, error) {
	return c.fetchLinks(ctx, internal.SortNew, request)
}

// FetchLinksRising retrieves a page of a subreddit's rising links.
func (c *Client) FetchLinksRising(ctx context.Context, request *types.LinksRequest) (*types.LinksResponse, error) {
	return c.fetchLinks(ctx, internal.SortRising, request)
}

// FetchLinksTop retrieves a page of a subreddit's top links over
// request.Period, which is required.
func (c *Client) FetchLinksTop(ctx context.Context, request *types.LinksRequest) (*types.LinksResponse, error) {
	return c.fetchLinks(ctx, internal.SortTop, request)
}

// FetchLinksControversial retrieves a page of a subreddit's controversial
// links over request.Period, which is required.
func (c *Client) FetchLinksControversial(ctx context.Context, request *types.LinksRequest) (*types.LinksResponse, error) {
	return c.fetchLinks(ctx, internal.SortControversial, request)
}

// FetchLinksRandom retrieves n random links from subreddit, one API call
// each. Duplicates are possible. Fewer than n links come back, without an
// error, when the subreddit stops handing links out.
func (c *Client) FetchLinksRandom(ctx context.Context, subreddit string, n int) ([]*types.Link, error) {
	ctx, _ = logging.WithRequestID(ctx, c.logger)

	if n < 1 || n > maxRandomLinks {
		return nil, &pkgerrs.ArgumentError{Operation: "links.random", Parameter: "n", Message: "must be between 1 and 100"}
	}

	links := make([]*types.Link, 0, n)
	for range n {
		req, err := internal.NewRandomLinksRequest(subreddit)
		if err != nil {
			return nil, err
		}

		body, err := c.send(ctx, req)
		if err != nil {
			return links, err
		}

		link, err := c.parser.ExtractRandomLink(req.Operation(), body)
		if errors.Is(err, internal.ErrNoRandomLink) {
			logging.FromContext(ctx).Debug("subreddit returned no random link", "subreddit", subreddit, "collected", len(links))
			return links, nil
		}
		if err != nil {
			return links, err
		}
		links = append(links, link)
	}
	return links, nil
}

func (c *Client) fetchLinks(ctx context.Context, sort internal.LinkSort, request *types.LinksRequest) (*types.LinksResponse, error) {
	ctx, _ = logging.WithRequestID(ctx, c.logger)

	if request == nil {
		return nil, &pkgerrs.ArgumentError{Operation: "links." + string(sort), Message: "request must not be nil"}
	}

	req, err := buildLinksRequest(sort, request)
	if err != nil {
		return nil, err
	}

	body, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}
	return c.parser.ExtractLinks(req.Operation(), body)
}

type param struct {
	name  string
	value any
}

// buildLinksRequest maps request onto the descriptor for sort. Fields that
// do not apply to sort are ignored.
func buildLinksRequest(sort internal.LinkSort, request *types.LinksRequest) (*internal.Request, error) {
	req, err := internal.NewLinksRequestForSort(request.Subreddit, sort)
	if err != nil {
		return nil, err
	}

	params := []param{
		{internal.ParamLimit, request.Limit},
		{internal.ParamAfter, request.After},
		{internal.ParamBefore, request.Before},
		{internal.ParamCount, request.Count},
		{internal.ParamSrDetail, request.SubredditDetail},
		{internal.ParamIncludeCategories, request.IncludeCategories},
	}
	if request.ShowAll {
		params = append(params, param{internal.ParamShow, "all"})
	}

	switch sort {
	case internal.SortHot:
		params = append(params, param{internal.ParamGeo, request.Geo})
	case internal.SortTop, internal.SortControversial:
		params = append(params, param{internal.ParamTime, request.Period})
	}

	for _, p := range params {
		if err := req.AddParameter(p.name, p.value); err != nil {
			return nil, err
		}
	}
	return req, nil
}
