package main

import (
	"github.com/firefox-exe/repolang/internal/cli"
)

func main() {
	cli.Execute()
}
