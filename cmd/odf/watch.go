package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/odf"
	"github.com/aretw0/odf/pkg/adapters/fs"
	"github.com/aretw0/odf/pkg/adapters/lifecycle"
	"github.com/aretw0/odf/pkg/core"
)

var (
	watchPattern string
	watchOut     string
	watchFormats []string
	watchPublish bool
	watchSettle  time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Convert ODF files as they appear in a directory",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts, err := serviceOptions(watchFormats, watchPublish)
		if err != nil {
			fatal("Error loading profile", err)
		}
		events := make(chan core.ConversionEvent, 16)
		svc, err := odf.New(append(opts, odf.WithEvents(events))...)
		if err != nil {
			fatal("Error initializing odf", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		w := fs.NewWatchWorker(fs.WatchConfig{
			Root:    args[0],
			Pattern: watchPattern,
			Settle:  watchSettle,
			Logger:  slog.Default(),
			Handle: func(ctx context.Context, path string) error {
				_, err := svc.Convert(ctx, path, watchOut)
				return err
			},
		})
		if err := w.Start(ctx); err != nil {
			fatal("Error starting watcher", err)
		}

		source := lifecycle.NewSource(events)
		if err := source.Start(ctx); err != nil {
			fatal("Error starting event source", err)
		}

		slog.Info("watching", "root", args[0], "pattern", w.Introspect().State().(fs.WatcherState).Pattern)
		for e := range source.Events() {
			fmt.Println(e.String())
		}

		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := w.Stop(shutdown); err != nil {
			fatal("Error stopping watcher", err)
		}
		state := svc.State().(core.ServiceState)
		slog.Info("stopped", "converted", state.Converted, "failed", state.Failed)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchPattern, "pattern", "**/*.{ODF,odf}", "Files to convert, relative to dir")
	watchCmd.Flags().StringVarP(&watchOut, "out", "o", "", "Output directory")
	watchCmd.Flags().StringSliceVarP(&watchFormats, "format", "f", nil, "Output formats (netcdf, parquet, json, yaml, csv)")
	watchCmd.Flags().BoolVar(&watchPublish, "publish", false, "Upload outputs using the profile's [publish] settings")
	watchCmd.Flags().DurationVar(&watchSettle, "settle", 200*time.Millisecond, "Quiet period before a changed file is converted")
}
