// Command dexview serves the range viewer and offers the same fetch and
// projection from the command line.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
