package main

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/terralab/landcover-cli/internal/fetcher"
)

var fetchDest string

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download configured scene bands into the workspace",
	Long:  "Downloads each band listed under fetch.sources (HTTP, HTTPS, or FTP) into the workspace, rate limited and with retry on transient failures.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if len(cfg.Fetch.Sources) == 0 {
			return eris.New("no fetch sources configured (set fetch.sources)")
		}

		dest := fetchDest
		if dest == "" {
			dest = cfg.ResolvePath("bands")
		}

		httpF := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			Timeout:    time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
			RatePerSec: cfg.Fetch.RatePerSec,
			Retries:    cfg.Fetch.Retries,
		})
		ftpF := fetcher.NewFTPFetcher(fetcher.FTPOptions{
			Timeout: time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		})

		paths, err := fetcher.FetchScene(ctx, cfg.Fetch.Sources, dest, httpF, ftpF)
		if err != nil {
			return eris.Wrap(err, "fetch")
		}

		for band, path := range paths {
			fmt.Printf("%-8s %s\n", band, path)
		}
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVar(&fetchDest, "dest", "", "destination directory (default <workspace>/bands)")
	rootCmd.AddCommand(fetchCmd)
}
