// Command chidata loads the City of Chicago business license and food
// inspection exports into a normalized relational database.
package main

import (
	"os"

	"chidata/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
