// Package graw is a Reddit API client for "script" applications that act
// as a single account through the OAuth2 password grant.
//
// # Overview
//
// A Client owns the authentication state of one account: its credentials,
// the current bearer token and the API quota reported by Reddit. Every
// call runs through the same pipeline:
//
//  1. The request is validated. Bad parameters fail with an
//     *errors.ArgumentError before any network activity.
//  2. If the endpoint needs a token and the held one is missing or within
//     a minute of expiry, a token is taken from Config.Store or fetched
//     from the token endpoint.
//  3. If the quota is spent, the client sleeps until it refills (the
//     default) or fails with an *errors.RateLimitError.
//  4. The request is sent; the quota is refreshed from the response
//     headers.
//
// # Quick Start
//
//	client, err := graw.NewClient(&graw.Config{
//		ClientID:     "your-client-id",
//		ClientSecret: "your-client-secret",
//		Username:     "your-username",
//		Password:     "your-password",
//		UserAgent:    "linux:myapp:v1.0 (by /u/your-username)",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	links, err := client.FetchLinksHot(ctx, &types.LinksRequest{
//		Subreddit:  "golang",
//		Pagination: types.Pagination{Limit: 25},
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	for _, link := range links.Links {
//		fmt.Printf("%s (score: %d)\n", link.Title, link.Score)
//	}
//
// # Pagination
//
// Listings are paged with fullname cursors ("t3_abc123"). Pass the After of
// one response as Pagination.After of the next request, or let
// NewLinksIterator do it:
//
//	it := client.NewLinksIterator(ctx, graw.SortNew, &types.LinksRequest{Subreddit: "golang"})
//	links, err := it.Collect(500)
//
// After and Before cannot be used together, and Limit is at most 100.
//
// # Token Storage
//
// Tokens live for an hour. To reuse them across process restarts set
// Config.Store to one of the drivers in pkg/storage/sqlite or
// pkg/storage/bolt. Storage failures are logged and never fail a call.
//
// # Error Handling
//
// Every failure is one of the types in pkg/errors:
//
//	_, err := client.FetchSubreddit(ctx, "golang")
//	var rateErr *errors.RateLimitError
//	switch {
//	case errors.As(err, &rateErr):
//		// retry after rateErr.RefillAt
//	case errors.IsRetryable(err):
//		// transport failure or server error
//	}
//
// A 401 on an authenticated call drops the held token; the next call
// acquires a new one. The failed call itself is not retried.
// Client.Reauthenticate forces a new grant at any time.
//
// # Logging
//
// Provide a *slog.Logger in Config.Logger. Each call logs with a req_id
// attribute so its records can be correlated. Tokens and passwords are
// never logged.
//
// # Concurrency
//
// A Client is not safe for concurrent use. Create one Client per goroutine;
// they may share a Store.
package graw
