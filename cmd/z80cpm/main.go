// z80cpm runs CP/M .COM images such as ZEXDOC and ZEXALL on the z80 core.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
