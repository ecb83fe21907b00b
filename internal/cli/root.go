package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pgdispatch",
	Short: "Pooled asynchronous query dispatcher for PostgreSQL",
	Long: `pgdispatch shares one bounded pool of PostgreSQL connections between
several asynchronous calling conventions: callbacks, futures, lazy unis and
single/completable observables. Every request receives exactly one terminal
signal, and its connection is back in the pool before that signal fires.

Commands:
  probe  runs one query through every facade and checks they agree
  load   drives concurrent traffic and reports pool statistics

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration
  11 - Database connection failed
  12 - Query failed on the server
  13 - No connection available within the acquire timeout
  14 - Pool closed while requests were pending`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo()
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("help", false, "Help for pgdispatch")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}
