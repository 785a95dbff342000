// Command medtriage classifies patient-described symptoms and attaches supporting
// protocol evidence, over HTTP or from the terminal.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
