package graw

import "github.com/jamesprial/graw/internal"

// LinkSort selects the ordering of a subreddit link listing.
type LinkSort = internal.LinkSort

// Listing orders accepted by NewLinksIterator.
const (
	SortHot           = internal.SortHot
	SortNew           = internal.SortNew
	SortRising        = internal.SortRising
	SortTop           = internal.SortTop
	SortControversial = internal.SortControversial
)

// ErrNoMoreLinks is returned by LinksIterator.Next once the listing is
// exhausted.
var ErrNoMoreLinks = internal.ErrNoMoreLinks

// TimePeriods are the values accepted by LinksRequest.Period.
var TimePeriods = internal.TimePeriods
