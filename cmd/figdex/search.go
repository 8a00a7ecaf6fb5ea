package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/figdex"
	"github.com/kailas-cloud/figdex/internal/domain/search/shape"
)

type searchFlags struct {
	owner  string
	shape  string
	limit  int
	offset int
	json   bool
}

func newSearchCmd(flags *globalFlags) *cobra.Command {
	sf := &searchFlags{}

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search one owner's figures",
		Long: `Runs a word-wheel (autocomplete), partial (substring) or full
(every term must match) search through the configured backend.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := flags.load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx := cmd.Context()
			client, err := buildApp(ctx, &cfg, logger)
			if err != nil {
				return err
			}
			defer client.Close()

			records, err := runSearch(ctx, client, sf, strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}
			if sf.json {
				return outputSearchJSON(cmd, records)
			}
			outputSearchTable(cmd, records)
			return nil
		},
	}

	cmd.Flags().StringVar(&sf.owner, "owner", "", "owner id to search as (required)")
	cmd.Flags().StringVar(&sf.shape, "shape", string(shape.Full), "wordwheel, partial or full")
	cmd.Flags().IntVarP(&sf.limit, "limit", "n", 0, "maximum number of results (wordwheel, partial)")
	cmd.Flags().IntVar(&sf.offset, "offset", 0, "results to skip (partial)")
	cmd.Flags().BoolVar(&sf.json, "json", false, "output results as JSON")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func runSearch(ctx context.Context, c *figdex.Client, sf *searchFlags, query string) ([]figdex.Record, error) {
	switch shape.Shape(sf.shape) {
	case shape.WordWheel:
		return c.WordWheel(ctx, query, sf.owner, sf.limit)
	case shape.Partial:
		return c.Partial(ctx, query, sf.owner, figdex.Page{Limit: sf.limit, Offset: sf.offset})
	case shape.Full:
		return c.FullSearch(ctx, query, sf.owner)
	default:
		return nil, fmt.Errorf("unknown shape %q", sf.shape)
	}
}

func outputSearchJSON(cmd *cobra.Command, records []figdex.Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, records []figdex.Record) {
	if len(records) == 0 {
		cmd.Println("No results found.")
		return
	}

	for i := range records {
		// Format: [N] Name - Manufacturer, Scale (Score)
		r := &records[i]
		cmd.Printf("  [%d] %s", i+1, r.Name)
		if r.Manufacturer != "" {
			cmd.Printf(" - %s", r.Manufacturer)
		}
		if r.Scale != "" {
			cmd.Printf(", %s", r.Scale)
		}
		cmd.Printf(" (%.2f)\n", r.SearchScore)
	}
}
