package internal

import (
	"fmt"
)

// LinkSort is the ordering of a subreddit link listing.
type LinkSort string

const (
	SortHot           LinkSort = "hot"
	SortNew           LinkSort = "new"
	SortRising        LinkSort = "rising"
	SortTop           LinkSort = "top"
	SortControversial LinkSort = "controversial"
	SortRandom        LinkSort = "random"
)

// Listing parameters shared by every sorted link listing.
const (
	ParamAfter             = "after"
	ParamBefore            = "before"
	ParamCount             = "count"
	ParamIncludeCategories = "include_categories"
	ParamLimit             = "limit"
	ParamShow              = "show"
	ParamSrDetail          = "sr_detail"

	// ParamGeo filters hot listings by region.
	ParamGeo = "g"
	// ParamTime is the period top and controversial listings cover.
	ParamTime = "t"
)

var listingParams = []string{
	ParamAfter, ParamBefore, ParamCount, ParamIncludeCategories,
	ParamLimit, ParamShow, ParamSrDetail,
}

// GeoValues are the region codes accepted by ParamGeo.
var GeoValues = []string{
	"GLOBAL", "AR", "AU", "BG", "CA", "CL", "CO", "CZ", "FI", "GB", "GR",
	"HR", "HU", "IE", "IN", "IS", "JP", "MX", "MY", "NZ", "PH", "PL",
	"PR", "PT", "RO", "RS", "SE", "SG", "TH", "TR", "TW", "US", "US_AK",
	"US_AL", "US_AR", "US_AZ", "US_CA", "US_CO", "US_CT", "US_DC", "US_DE",
	"US_FL", "US_GA", "US_HI", "US_IA", "US_ID", "US_IL", "US_IN", "US_KS",
	"US_KY", "US_LA", "US_MA", "US_MD", "US_ME", "US_MI", "US_MN", "US_MO",
	"US_MS", "US_MT", "US_NC", "US_ND", "US_NE", "US_NH", "US_NJ", "US_NM",
	"US_NV", "US_NY", "US_OH", "US_OK", "US_OR", "US_PA", "US_RI", "US_SC",
	"US_SD", "US_TN", "US_TX", "US_UT", "US_VA", "US_VT", "US_WA", "US_WI",
	"US_WV", "US_WY",
}

// TimePeriods are the values accepted by ParamTime.
var TimePeriods = []string{"hour", "day", "week", "month", "year", "all"}

// newLinksRequest builds the descriptor common to every sorted listing of
// /r/{subreddit}/{sort}.
func newLinksRequest(subreddit string, sort LinkSort) (*Request, error) {
	if err := NewValidator().ValidateSubredditName(subreddit); err != nil {
		return nil, withOperation(err, "links."+string(sort))
	}
	return &Request{
		operation:    "links." + string(sort),
		verb:         VerbGet,
		endpoint:     EndpointAuthenticated,
		path:         fmt.Sprintf("/r/%s/%s", subreddit, sort),
		allowed:      append([]string(nil), listingParams...),
		requiresAuth: true,
		checks: []Check{
			intRange(ParamLimit, 0, maxPaginationLimit),
			oneOf(ParamShow, "all"),
			exclusive(ParamAfter, ParamBefore),
		},
	}, nil
}

// NewHotLinksRequest lists a subreddit's hot links. It also accepts ParamGeo.
func NewHotLinksRequest(subreddit string) (*Request, error) {
	r, err := newLinksRequest(subreddit, SortHot)
	if err != nil {
		return nil, err
	}
	r.allowed = append(r.allowed, ParamGeo)
	r.checks = append(r.checks, oneOf(ParamGeo, GeoValues...))
	return r, nil
}

// NewNewLinksRequest lists a subreddit's newest links.
func NewNewLinksRequest(subreddit string) (*Request, error) {
	return newLinksRequest(subreddit, SortNew)
}

// NewRisingLinksRequest lists a subreddit's rising links.
func NewRisingLinksRequest(subreddit string) (*Request, error) {
	return newLinksRequest(subreddit, SortRising)
}

// NewTopLinksRequest lists a subreddit's top links. ParamTime is mandatory.
func NewTopLinksRequest(subreddit string) (*Request, error) {
	return newPeriodLinksRequest(subreddit, SortTop)
}

// NewControversialLinksRequest lists a subreddit's controversial links.
// ParamTime is mandatory.
func NewControversialLinksRequest(subreddit string) (*Request, error) {
	return newPeriodLinksRequest(subreddit, SortControversial)
}

func newPeriodLinksRequest(subreddit string, sort LinkSort) (*Request, error) {
	r, err := newLinksRequest(subreddit, sort)
	if err != nil {
		return nil, err
	}
	r.allowed = append(r.allowed, ParamTime)
	r.mandatory = append(r.mandatory, ParamTime)
	r.checks = append(r.checks, oneOf(ParamTime, TimePeriods...))
	return r, nil
}

// NewRandomLinksRequest fetches one random link from a subreddit. It
// accepts no parameters.
func NewRandomLinksRequest(subreddit string) (*Request, error) {
	r, err := newLinksRequest(subreddit, SortRandom)
	if err != nil {
		return nil, err
	}
	r.allowed = nil
	r.checks = nil
	return r, nil
}

// NewLinksRequestForSort dispatches to the constructor for sort.
func NewLinksRequestForSort(subreddit string, sort LinkSort) (*Request, error) {
	switch sort {
	case SortHot:
		return NewHotLinksRequest(subreddit)
	case SortNew:
		return NewNewLinksRequest(subreddit)
	case SortRising:
		return NewRisingLinksRequest(subreddit)
	case SortTop:
		return NewTopLinksRequest(subreddit)
	case SortControversial:
		return NewControversialLinksRequest(subreddit)
	case SortRandom:
		return NewRandomLinksRequest(subreddit)
	}
	return nil, withOperation(fmt.Errorf("unknown sort %q", sort), "links")
}
