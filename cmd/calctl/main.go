package main

import (
	"fmt"
	"os"

	"calbotd/internal/ctl"
)

func main() {
	if err := ctl.Main(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
