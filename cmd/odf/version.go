package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/odf"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of odf",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("odf version %s\n", strings.TrimSpace(odf.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
