// Version command for the linkwed CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/linkwed/linkwed/pkg/linkwed"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the linkwed version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("linkwed", linkwed.Version)
	},
}
