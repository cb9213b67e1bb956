package main

import (
	"fmt"
	"os"
)

func main() {
	ui := newUI()
	if err := newRootCmd(os.Stdout, os.Stderr, ui).Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, ui.err("[ERROR]"), err.Error())
		os.Exit(1)
	}
}
