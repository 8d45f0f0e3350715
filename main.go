package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
)

const version = "0.1.0"

func main() {
	a := &app{}
	root := newRootCmd(a)

	err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt),
	)
	if cerr := a.close(); cerr != nil {
		fmt.Fprintf(os.Stderr, "Error closing store: %v\n", cerr)
	}
	if err != nil {
		os.Exit(1)
	}
}
