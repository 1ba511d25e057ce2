package main

import (
	"os"

	"github.com/handiism/applemusic-scraper/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
