package main

import (
	"fmt"
	"os"

	"github.com/clauselens/clauselens/internal/cli"
	"github.com/clauselens/clauselens/internal/cli/admin"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clauselensd",
		Short: "ClauseLens daemon",
		Long:  "ClauseLens daemon for running the clause analysis API server",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
