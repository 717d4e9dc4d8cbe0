package graw

import (
	"context"

	"golang.org/x/oauth2"
)

// TokenSource adapts the client's authentication to golang.org/x/oauth2.
// Each Token call runs the same lookup as Authenticate, so the returned
// tokens share the client's store and quota accounting. Like the Client,
// the source must not be used concurrently with other client calls.
func (c *Client) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &tokenSource{ctx: ctx, client: c}
}

type tokenSource struct {
	ctx    context.Context
	client *Client
}

func (s *tokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.client.Authenticate(s.ctx)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{
		AccessToken: tok.Token(),
		TokenType:   tok.TokenType(),
		Expiry:      tok.ExpiresAt(),
	}, nil
}
