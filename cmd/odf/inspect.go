package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/odf"
	"github.com/aretw0/odf/pkg/adapters/fs"
)

var (
	inspectJSON bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [file]",
	Short: "Print the header and column layout of an ODF file",
	Long:  `Parse an ODF file and print its metadata tree and typed columns as YAML, or JSON with --json.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts, err := serviceOptions(nil, false)
		if err != nil {
			fatal("Error loading profile", err)
		}
		svc, err := odf.New(opts...)
		if err != nil {
			fatal("Error initializing odf", err)
		}

		ds, err := svc.ReadFile(args[0])
		if err != nil {
			fatal("Error reading file", err)
		}

		var s fs.Serializer = fs.NewYAMLSerializer()
		if inspectJSON {
			s = fs.NewJSONSerializer()
		}
		data, err := s.Serialize(ds)
		if err != nil {
			fatal("Error encoding output", err)
		}
		os.Stdout.Write(data)
		if inspectJSON {
			fmt.Println()
		}
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "Output in JSON format")
}
