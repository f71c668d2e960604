// Command graphedit is a terminal editor for weighted graphs, with headless
// subcommands for path queries, inspection and format conversion.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
