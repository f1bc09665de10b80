// Command dashboard is a personal content dashboard for the terminal.
//
// Usage:
//
//	dashboard                 Run the interactive dashboard
//	dashboard serve           Run the news and movie API proxy
//	dashboard feed            Print the default feed
//	dashboard search <query>  Search every source
//	dashboard config init     Write the default config file
package main

import (
	"fmt"
	"os"

	"github.com/abelbrown/dashboard/internal/cli"
)

var version = "dev"

func main() {
	cmd := cli.NewRootCommand(version)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "dashboard:", err)
		os.Exit(1)
	}
}
