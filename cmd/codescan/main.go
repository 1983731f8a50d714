package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ppiankov/codescan/internal/cli"
	"github.com/ppiankov/codescan/internal/config"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var cfgErr *config.ValidationError
		if errors.As(err, &cfgErr) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
