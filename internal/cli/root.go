package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

// Execute runs the pidforge CLI and returns an error if any command fails.
//
// Logging goes to stderr at the level named by log.level in the config file
// (info by default); --verbose (-v) forces debug. The logger is attached to
// the command context and reachable from every command via loggerFromContext.
//
// Example:
//
//	func main() {
//	    if err := cli.Execute(context.Background()); err != nil {
//	        os.Exit(1)
//	    }
//	}
func Execute(ctx context.Context) error {
	var verbose bool

	c := New(os.Stderr, LogInfo)
	root := c.RootCommand()
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	inner := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		level := LogDebug
		if !verbose {
			level = c.configLevel()
		}
		c.SetLogLevel(level)
		return inner(cmd, args)
	}

	return root.ExecuteContext(ctx)
}
