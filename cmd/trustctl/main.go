// Command trustctl is the operator tool for trustscore: it creates wallet
// keys, mints bearer tokens and signs attestations for local testing.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
