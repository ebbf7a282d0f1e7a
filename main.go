// ./main.go
package main

import (
	"context"
	"os"

	"github.com/xkilldash9x/stylebox/cmd"
)

// main lets the module root be run directly; cmd/stylebox is the installed binary.
func main() {
	if err := cmd.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}
