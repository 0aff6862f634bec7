// Command biasbotd runs the companion chat service: per-client daily quota,
// idle detection with proactive follow-up prompts, and the polling queue the
// frontend drains.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
