// Command graw is a small command line client for the Reddit API built on
// the graw library.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
