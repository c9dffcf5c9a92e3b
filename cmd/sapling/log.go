package main

import (
	"fmt"
	"os"
)

// progressLog writes growing progress to stderr when verbose is on.
type progressLog bool

func (l progressLog) Logf(format string, a ...interface{}) {
	if !l {
		return
	}
	fmt.Fprintf(os.Stderr, format+"\n", a...)
}
