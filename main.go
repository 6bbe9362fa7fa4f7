package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/PolarWolf314/envseal/cmd"
)

func main() {
	if err := cmd.NewRootCommand().Execute(); err != nil {
		var reported *cmd.ReportedError
		if !errors.As(err, &reported) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
