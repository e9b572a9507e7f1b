// Command quotesync crawls a quotes site into Postgres and serves a
// read-only dashboard API over the result.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "quotesync: %v\n", err)
		os.Exit(1)
	}
}
