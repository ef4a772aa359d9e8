package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/aretw0/odf"
	"github.com/aretw0/odf/pkg/adapters/fs"
)

var (
	convertOut     string
	convertFormats []string
	convertPublish bool
	convertIncr    bool
)

var convertCmd = &cobra.Command{
	Use:   "convert [pattern...]",
	Short: "Convert ODF files",
	Long: `Convert every file matching the given patterns. Patterns support ** globs.
Output files are written next to each source unless --out is set.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		files, err := expandPatterns(args)
		if err != nil {
			fatal("Invalid pattern", err)
		}
		if len(files) == 0 {
			fatal("Nothing to convert", fmt.Errorf("no files match %v", args))
		}

		opts, err := serviceOptions(convertFormats, convertPublish)
		if err != nil {
			fatal("Error loading profile", err)
		}
		svc, err := odf.New(opts...)
		if err != nil {
			fatal("Error initializing odf", err)
		}

		if convertOut != "" {
			if err := os.MkdirAll(convertOut, 0755); err != nil {
				fatal("Error creating output directory", err)
			}
		}

		var ledger *fs.Ledger
		var formats []string
		if convertIncr {
			ledger = fs.NewLedger(filepath.Join(convertOut, fs.LedgerName))
			if err := ledger.Load(); err != nil {
				fatal("Error loading ledger", err)
			}
			for _, e := range svc.Exporters() {
				formats = append(formats, e.Name())
			}
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		failed, skipped := 0, 0
		for _, f := range files {
			if ledger != nil && ledger.Fresh(f, formats) {
				skipped++
				continue
			}
			written, err := svc.Convert(ctx, f, convertOut)
			if err != nil {
				fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", f, err)
				failed++
				if ledger != nil {
					ledger.Forget(f)
				}
				if ctx.Err() != nil {
					break
				}
				continue
			}
			for _, w := range written {
				fmt.Printf("%s -> %s\n", f, w)
			}
			if ledger != nil {
				if err := ledger.Record(f, formats, written); err != nil {
					fmt.Fprintf(os.Stderr, "WARN ledger %s: %v\n", f, err)
				}
			}
		}

		if ledger != nil {
			ledger.Prune()
			if err := ledger.Save(); err != nil {
				fmt.Fprintf(os.Stderr, "WARN saving ledger: %v\n", err)
			}
			if skipped > 0 {
				fmt.Printf("%d unchanged files skipped\n", skipped)
			}
		}

		if failed > 0 {
			fmt.Fprintf(os.Stderr, "%d of %d files failed\n", failed, len(files))
			os.Exit(1)
		}
	},
}

// expandPatterns resolves doublestar globs into a sorted, de-duplicated file list.
func expandPatterns(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, p := range patterns {
		matches, err := doublestar.FilepathGlob(p, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringVarP(&convertOut, "out", "o", "", "Output directory")
	convertCmd.Flags().StringSliceVarP(&convertFormats, "format", "f", nil, "Output formats (netcdf, parquet, json, yaml, csv)")
	convertCmd.Flags().BoolVar(&convertIncr, "incremental", false, "Skip files unchanged since their last conversion")
	convertCmd.Flags().BoolVar(&convertPublish, "publish", false, "Upload outputs using the profile's [publish] settings")
}
