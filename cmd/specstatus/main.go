package main

import (
	"context"
	"os"

	"github.com/YoshitsuguKoike/specstatus/internal/interface/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background(), os.Args[1:]))
}
