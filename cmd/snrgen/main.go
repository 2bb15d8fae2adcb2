// Package main is the entry point for the snrgen CLI.
//
// Usage:
//
//	snrgen [flags] <command> [args]
//
// Commands:
//
//	generate  - Draw injection parameters and build the dataset record
//	snr       - Run the matched-filter engine over this job's sample shard
//	finalize  - Write the array header once every job has finished
//	bank      - Template bank inspection (info)
package main

import (
	"fmt"
	"os"

	"github.com/shieldml/snrgen/cmd/snrgen/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
