// Package main is the entry point of investsync, which appends brokerage
// reference data and candles to a columnar store without duplicating rows.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
