package main

import (
	"context"
	"fmt"
	"os"

	"github.com/digitorus/pdfcertify/cli"
)

func main() {
	if err := cli.NewCommand(os.Stdout, os.Stderr).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
