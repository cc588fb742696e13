// The main package for the photo-album-scraper executable.
package main

import (
	"github.com/JakeFAU/photo-album-scraper/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
