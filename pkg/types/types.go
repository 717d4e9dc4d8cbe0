// Package types holds the data transfer objects decoded from Reddit API
// responses and the request options accepted by the graw client.
package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Thing kinds returned by the API.
const (
	KindListing   = "Listing"
	KindComment   = "t1"
	KindAccount   = "t2"
	KindLink      = "t3"
	KindSubreddit = "t5"
)

// ThingData holds the identifiers shared by every Reddit object.
type ThingData struct {
	ID   string `json:"id"`   // ID (without prefix)
	Name string `json:"name"` // Fullname, e.g. "t3_abc123"
}

// Thing is the kind/data envelope every API object arrives in. Data is
// decoded once Kind is known.
type Thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// Votable is embedded by things that carry vote counts.
type Votable struct {
	Ups   int `json:"ups"`
	Downs int `json:"downs"`
	// Likes is the caller's vote: true up, false down, nil none.
	Likes *bool `json:"likes"`
}

// Created is embedded by things that have a creation time.
type Created struct {
	Created    float64 `json:"created"`
	CreatedUTC float64 `json:"created_utc"`
}

// Edited decodes the "edited" field, which Reddit sends as false, true
// (very old edits) or a unix timestamp.
type Edited struct {
	IsEdited  bool
	Timestamp float64
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Edited) UnmarshalJSON(data []byte) error {
	switch strings.ToLower(string(data)) {
	case "false", "null":
		*e = Edited{}
		return nil
	case "true":
		*e = Edited{IsEdited: true}
		return nil
	}

	var timestamp float64
	if err := json.Unmarshal(data, &timestamp); err != nil {
		return fmt.Errorf("unrecognized type for 'edited' field: %s", data)
	}
	*e = Edited{IsEdited: true, Timestamp: timestamp}
	return nil
}

// ListingData is the payload of a Listing thing.
type ListingData struct {
	Before   string   `json:"before"` // fullname of the first item, for the previous page
	After    string   `json:"after"`  // fullname of the last item, for the next page
	Dist     *int     `json:"dist"`
	Children []*Thing `json:"children"`
}

// Link is a submission (kind t3).
type Link struct {
	ThingData
	Votable
	Created
	Author            string          `json:"author"`
	Domain            string          `json:"domain"`
	IsSelf            bool            `json:"is_self"`
	LinkFlairText     *string         `json:"link_flair_text"`
	Locked            bool            `json:"locked"`
	Media             json.RawMessage `json:"media"`
	NumComments       int             `json:"num_comments"`
	Over18            bool            `json:"over_18"`
	Permalink         string          `json:"permalink"`
	Score             int             `json:"score"`
	SelfText          string          `json:"selftext"`
	Spoiler           bool            `json:"spoiler"`
	Stickied          bool            `json:"stickied"`
	Subreddit         string          `json:"subreddit"`
	SubredditID       string          `json:"subreddit_id"`
	Thumbnail         string          `json:"thumbnail"`
	Title             string          `json:"title"`
	URL               string          `json:"url"`
	UpvoteRatio       float64         `json:"upvote_ratio"`
	Edited            Edited          `json:"edited"`
	Distinguished     *string         `json:"distinguished"`
	SubredditDetail   json.RawMessage `json:"sr_detail,omitempty"`
	SuggestedSort     *string         `json:"suggested_sort"`
	RemovedByCategory *string         `json:"removed_by_category"`
}

// Comment is a comment (kind t1). Only returned by info lookups here; reply
// trees are not expanded.
type Comment struct {
	ThingData
	Votable
	Created
	Author        string  `json:"author"`
	Body          string  `json:"body"`
	Edited        Edited  `json:"edited"`
	LinkID        string  `json:"link_id"`
	ParentID      string  `json:"parent_id"`
	Permalink     string  `json:"permalink"`
	Score         int     `json:"score"`
	Subreddit     string  `json:"subreddit"`
	SubredditID   string  `json:"subreddit_id"`
	Distinguished *string `json:"distinguished"`
	Stickied      bool    `json:"stickied"`
}

// Subreddit is a community (kind t5).
type Subreddit struct {
	ThingData
	Created
	AccountsActive    int     `json:"accounts_active"`
	Description       string  `json:"description"`
	DisplayName       string  `json:"display_name"`
	HeaderImg         *string `json:"header_img"`
	Over18            bool    `json:"over18"`
	PublicDescription string  `json:"public_description"`
	Subscribers       int64   `json:"subscribers"`
	SubmissionType    string  `json:"submission_type"`
	SubredditType     string  `json:"subreddit_type"`
	Title             string  `json:"title"`
	URL               string  `json:"url"`
	UserIsBanned      *bool   `json:"user_is_banned"`
	UserIsModerator   *bool   `json:"user_is_moderator"`
	UserIsSubscriber  *bool   `json:"user_is_subscriber"`
}

// Account is a user (kind t2).
type Account struct {
	ThingData
	Created
	CommentKarma     int   `json:"comment_karma"`
	HasVerifiedEmail *bool `json:"has_verified_email"`
	IsEmployee       bool  `json:"is_employee"`
	IsGold           bool  `json:"is_gold"`
	IsMod            bool  `json:"is_mod"`
	IsSuspended      bool  `json:"is_suspended"`
	LinkKarma        int   `json:"link_karma"`
	TotalKarma       int   `json:"total_karma"`
	Over18           bool  `json:"over_18"`
	Verified         bool  `json:"verified"`
}

// Pagination captures the cursor fields shared by listing endpoints.
// Cursors are fullnames such as "t3_abc123".
type Pagination struct {
	// Limit is the page size, at most 100. Zero lets Reddit choose (25).
	Limit int
	// After requests items after this fullname. Exclusive with Before.
	After string
	// Before requests items before this fullname. Exclusive with After.
	Before string
}

// LinksRequest describes a sorted listing of one subreddit's links.
type LinksRequest struct {
	Subreddit string
	Pagination

	// Count is the number of items already seen, used by Reddit to number
	// the page.
	Count int
	// ShowAll disables the account's "hide links I've voted on" filters.
	ShowAll bool
	// SubredditDetail expands each link's subreddit into sr_detail.
	SubredditDetail bool
	// IncludeCategories asks Reddit to attach category data.
	IncludeCategories bool

	// Geo filters hot listings by region code, e.g. "GB" or "US_CA".
	// Ignored by the other sorts.
	Geo string
	// Period is the window covered by top and controversial listings: one
	// of hour, day, week, month, year or all. Required for those sorts.
	Period string
}

// LinksResponse is one page of a link listing.
type LinksResponse struct {
	Links  []*Link
	After  string // cursor for the next page, empty on the last page
	Before string // cursor for the previous page
}

// InfoResponse holds the things returned by a fullname lookup, grouped by kind.
type InfoResponse struct {
	Links      []*Link
	Comments   []*Comment
	Subreddits []*Subreddit
}
