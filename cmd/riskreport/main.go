package main

import (
	"fmt"
	"os"

	"asxPaperBot/cmd/riskreport/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
