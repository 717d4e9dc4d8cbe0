package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jamesprial/graw"
	"github.com/jamesprial/graw/pkg/types"
)

// Flags for links.
var (
	linksSort    string
	linksLimit   int
	linksAfter   string
	linksBefore  string
	linksPeriod  string
	linksGeo     string
	linksShowAll bool
)

var linksCmd = &cobra.Command{
	Use:   "links <subreddit>",
	Short: "List a subreddit's links",
	Long: `List one page of a subreddit's links.

Examples:
  graw links golang
  graw links golang --sort top --period week --limit 10
  graw links golang --sort hot --geo GB
  graw links golang --sort random --limit 3`,
	Args: cobra.ExactArgs(1),
	RunE: runLinks,
}

func init() {
	linksCmd.Flags().StringVar(&linksSort, "sort", "hot", "hot, new, rising, top, controversial or random")
	linksCmd.Flags().IntVar(&linksLimit, "limit", 0, "page size, at most 100 (random: number of links)")
	linksCmd.Flags().StringVar(&linksAfter, "after", "", "fullname to list after")
	linksCmd.Flags().StringVar(&linksBefore, "before", "", "fullname to list before")
	linksCmd.Flags().StringVar(&linksPeriod, "period", "", "hour, day, week, month, year or all (top and controversial)")
	linksCmd.Flags().StringVar(&linksGeo, "geo", "", "region filter for hot, e.g. GB or US_CA")
	linksCmd.Flags().BoolVar(&linksShowAll, "show-all", false, "ignore the account's hide filters")
	rootCmd.AddCommand(linksCmd)
}

func runLinks(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	subreddit := args[0]

	if linksSort == "random" {
		n := linksLimit
		if n == 0 {
			n = 1
		}
		links, err := s.client.FetchLinksRandom(ctx, subreddit, n)
		if err != nil {
			return err
		}
		printLinks(cmd, links)
		return nil
	}

	req := &types.LinksRequest{
		Subreddit:  subreddit,
		Pagination: types.Pagination{Limit: linksLimit, After: linksAfter, Before: linksBefore},
		ShowAll:    linksShowAll,
		Geo:        linksGeo,
		Period:     linksPeriod,
	}

	var resp *types.LinksResponse
	switch graw.LinkSort(linksSort) {
	case graw.SortHot:
		resp, err = s.client.FetchLinksHot(ctx, req)
	case graw.SortNew:
		resp, err = s.client.FetchLinksNew(ctx, req)
	case graw.SortRising:
		resp, err = s.client.FetchLinksRising(ctx, req)
	case graw.SortTop:
		resp, err = s.client.FetchLinksTop(ctx, req)
	case graw.SortControversial:
		resp, err = s.client.FetchLinksControversial(ctx, req)
	default:
		return fmt.Errorf("unknown sort %q", linksSort)
	}
	if err != nil {
		return err
	}

	printLinks(cmd, resp.Links)
	if resp.After != "" {
		cmd.Printf("after: %s\n", resp.After)
	}
	return nil
}

func printLinks(cmd *cobra.Command, links []*types.Link) {
	for _, link := range links {
		cmd.Printf("%6d  %-12s  %s\n", link.Score, link.Name, link.Title)
	}
}
