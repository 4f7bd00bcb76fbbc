package main

import (
	"context"
	"os"

	"github.com/idilsaglam/todoproxy/internal/cli"
)

func main() {
	os.Exit(cli.Run(context.Background(), os.Args[1:]))
}
