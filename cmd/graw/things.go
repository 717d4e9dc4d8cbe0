package main

import (
	"github.com/spf13/cobra"

	"github.com/jamesprial/graw/pkg/types"
)

var subredditCmd = &cobra.Command{
	Use:   "subreddit <name>",
	Short: "Show a subreddit's details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		sub, err := s.client.FetchSubreddit(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		cmd.Printf("r/%s (%s)\n", sub.DisplayName, sub.Name)
		cmd.Printf("title:       %s\n", sub.Title)
		cmd.Printf("subscribers: %d\n", sub.Subscribers)
		cmd.Printf("type:        %s\n", sub.SubredditType)
		return nil
	},
}

var userCmd = &cobra.Command{
	Use:   "user <name>",
	Short: "Show a user's public profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		account, err := s.client.FetchUser(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printAccount(cmd, account)
		return nil
	},
}

var meCmd = &cobra.Command{
	Use:   "me",
	Short: "Show the authenticated account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		account, err := s.client.FetchMyAccount(cmd.Context())
		if err != nil {
			return err
		}
		printAccount(cmd, account)

		remaining, refillAt := s.client.RateLimit()
		cmd.Printf("quota:       %d left, refills %s\n", max(0, remaining), refillAt.Format("15:04:05"))
		return nil
	},
}

var infoCmd = &cobra.Command{
	Use:   "info <fullname>...",
	Short: "Look up links, comments and subreddits by fullname",
	Args:  cobra.RangeArgs(1, 100),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		info, err := s.client.FetchInfo(cmd.Context(), args...)
		if err != nil {
			return err
		}
		printLinks(cmd, info.Links)
		for _, c := range info.Comments {
			cmd.Printf("%6d  %-12s  %s: %s\n", c.Score, c.Name, c.Author, c.Body)
		}
		for _, sub := range info.Subreddits {
			cmd.Printf("%6d  %-12s  r/%s\n", sub.Subscribers, sub.Name, sub.DisplayName)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(subredditCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(meCmd)
	rootCmd.AddCommand(infoCmd)
}

func printAccount(cmd *cobra.Command, a *types.Account) {
	cmd.Printf("u/%s (%s)\n", a.Name, a.ID)
	cmd.Printf("link karma:    %d\n", a.LinkKarma)
	cmd.Printf("comment karma: %d\n", a.CommentKarma)
}
