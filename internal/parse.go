package internal

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	pkgerrs "github.com/jamesprial/graw/pkg/errors"
	"github.com/jamesprial/graw/pkg/types"
)

// ErrNoRandomLink is returned by ExtractRandomLink when the subreddit had
// no link to hand out.
var ErrNoRandomLink = errors.New("random response contains no link")

// Parser maps raw API responses onto the DTOs in pkg/types.
type Parser struct{}

// NewParser creates a new parser instance
func NewParser() *Parser {
	return &Parser{}
}

// ParseThing decodes a kind/data envelope.
func (p *Parser) ParseThing(op string, body []byte) (*types.Thing, error) {
	var thing types.Thing
	if err := json.Unmarshal(body, &thing); err != nil {
		return nil, parseErr(op, "failed to decode thing", err)
	}
	if thing.Kind == "" {
		return nil, parseErr(op, "response has no kind", nil)
	}
	return &thing, nil
}

// ParseListing extracts a ListingData from a Thing of kind "Listing".
func (p *Parser) ParseListing(op string, thing *types.Thing) (*types.ListingData, error) {
	var listing types.ListingData
	if err := decodeKind(op, thing, types.KindListing, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

// ParseLink extracts a Link from a Thing of kind "t3".
func (p *Parser) ParseLink(op string, thing *types.Thing) (*types.Link, error) {
	var link types.Link
	if err := decodeKind(op, thing, types.KindLink, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

// ParseComment extracts a Comment from a Thing of kind "t1".
func (p *Parser) ParseComment(op string, thing *types.Thing) (*types.Comment, error) {
	var comment types.Comment
	if err := decodeKind(op, thing, types.KindComment, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// ParseSubreddit extracts a Subreddit from a Thing of kind "t5".
func (p *Parser) ParseSubreddit(op string, thing *types.Thing) (*types.Subreddit, error) {
	var sub types.Subreddit
	if err := decodeKind(op, thing, types.KindSubreddit, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// ParseAccount extracts an Account from a Thing of kind "t2".
func (p *Parser) ParseAccount(op string, thing *types.Thing) (*types.Account, error) {
	var account types.Account
	if err := decodeKind(op, thing, types.KindAccount, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// ParseMe decodes /api/v1/me, which returns bare account data without the
// kind/data envelope.
func (p *Parser) ParseMe(op string, body []byte) (*types.Account, error) {
	var account types.Account
	if err := json.Unmarshal(body, &account); err != nil {
		return nil, parseErr(op, "failed to decode account", err)
	}
	if account.Name == "" {
		return nil, parseErr(op, "account response has no name", nil)
	}
	return &account, nil
}

// ExtractLinks decodes a listing body into links and its cursors. Children
// of other kinds are skipped.
func (p *Parser) ExtractLinks(op string, body []byte) (*types.LinksResponse, error) {
	thing, err := p.ParseThing(op, body)
	if err != nil {
		return nil, err
	}
	listing, err := p.ParseListing(op, thing)
	if err != nil {
		return nil, err
	}

	links := make([]*types.Link, 0, len(listing.Children))
	for _, child := range listing.Children {
		if child == nil || child.Kind != types.KindLink {
			continue
		}
		link, err := p.ParseLink(op, child)
		if err != nil {
			return nil, err
		}
		links = append(links, link)
	}

	return &types.LinksResponse{Links: links, After: listing.After, Before: listing.Before}, nil
}

// ExtractRandomLink pulls the link out of a random listing response, which
// is an array of [link listing, comment listing].
func (p *Parser) ExtractRandomLink(op string, body []byte) (*types.Link, error) {
	child := gjson.GetBytes(body, "0.data.children.0")
	if !child.Exists() {
		// Some subreddits answer with a plain listing instead.
		child = gjson.GetBytes(body, "data.children.0")
	}
	if !child.Exists() {
		return nil, ErrNoRandomLink
	}

	var thing types.Thing
	if err := json.Unmarshal([]byte(child.Raw), &thing); err != nil {
		return nil, parseErr(op, "failed to decode random link", err)
	}
	return p.ParseLink(op, &thing)
}

// ExtractInfo groups the things of an info listing by kind.
func (p *Parser) ExtractInfo(op string, body []byte) (*types.InfoResponse, error) {
	thing, err := p.ParseThing(op, body)
	if err != nil {
		return nil, err
	}
	listing, err := p.ParseListing(op, thing)
	if err != nil {
		return nil, err
	}

	resp := &types.InfoResponse{}
	for _, child := range listing.Children {
		if child == nil {
			continue
		}
		switch child.Kind {
		case types.KindLink:
			link, err := p.ParseLink(op, child)
			if err != nil {
				return nil, err
			}
			resp.Links = append(resp.Links, link)
		case types.KindComment:
			comment, err := p.ParseComment(op, child)
			if err != nil {
				return nil, err
			}
			resp.Comments = append(resp.Comments, comment)
		case types.KindSubreddit:
			sub, err := p.ParseSubreddit(op, child)
			if err != nil {
				return nil, err
			}
			resp.Subreddits = append(resp.Subreddits, sub)
		}
	}
	return resp, nil
}

func decodeKind(op string, thing *types.Thing, kind string, v any) error {
	if thing == nil {
		return parseErr(op, "thing is nil", nil)
	}
	if thing.Kind != kind {
		return parseErr(op, fmt.Sprintf("expected %s, got %s", kind, thing.Kind), nil)
	}
	if err := json.Unmarshal(thing.Data, v); err != nil {
		return parseErr(op, fmt.Sprintf("failed to decode %s data", kind), err)
	}
	return nil
}

func parseErr(op, msg string, err error) error {
	return &pkgerrs.ParseError{Operation: op, Message: msg, Err: err}
}
