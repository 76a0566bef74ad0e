package main

import (
	"github.com/siteforge-io/siteforge/cmd/root"
)

func main() {
	root.Execute()
}
