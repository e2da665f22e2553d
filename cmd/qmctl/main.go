package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/holthoefer/qmflow/cmd/qmctl/commands"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "qmctl",
		Short: "Operational tool for the qmflow API",
		Long:  "CLI tool for profile administration and bootstrap tasks",
	}

	rootCmd.AddCommand(commands.NewProfilesCmd())
	rootCmd.AddCommand(commands.NewBootstrapAdminCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
