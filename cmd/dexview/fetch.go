package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Sternrassler/dexview/pkg/catalog"
	"github.com/Sternrassler/dexview/pkg/rangefetch"
	"github.com/Sternrassler/dexview/pkg/view"
)

type fetchOptions struct {
	start string
	end   string
	sort  string
	order string
	types []string
}

func newFetchCmd(root *rootOptions) *cobra.Command {
	opts := &fetchOptions{}

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch an ID range and print it as a table",
		Long: `Fetches every Pokémon in [start, end] concurrently and prints the sorted,
filtered result. A single failed fetch aborts the whole range.

Example:
  dexview fetch --start 1 --end 9 --sort weight --order desc --type fire`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runFetch(ctx, cmd.OutOrStdout(), root, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.start, "start", "", "first ID (defaults to viewer.default_start)")
	flags.StringVar(&opts.end, "end", "", "last ID (defaults to viewer.default_end)")
	flags.StringVar(&opts.sort, "sort", string(view.SortByID), "sort key: id, weight, height, base_experience")
	flags.StringVar(&opts.order, "order", string(view.Ascending), "sort order: asc, desc")
	flags.StringSliceVar(&opts.types, "type", nil, "only show Pokémon carrying all of these types (repeatable)")

	return cmd
}

func runFetch(ctx context.Context, out io.Writer, root *rootOptions, opts *fetchOptions) error {
	startText, endText := opts.start, opts.end
	if startText == "" {
		startText = strconv.Itoa(root.cfg.Viewer.DefaultStart)
	}
	if endText == "" {
		endText = strconv.Itoa(root.cfg.Viewer.DefaultEnd)
	}

	// validate everything before touching the network
	start, end, err := rangefetch.ParseRange(startText, endText)
	if err != nil {
		return err
	}
	q, err := view.ParseQuery(opts.sort, opts.order, opts.types)
	if err != nil {
		return err
	}

	client, err := root.catalogClient()
	if err != nil {
		return err
	}

	records, err := rangefetch.New(client).FetchRange(ctx, start, end)
	if err != nil {
		return fmt.Errorf("fetch range %d-%d: %w", start, end, err)
	}

	return printRecords(out, view.Project(records, q), records)
}

func printRecords(out io.Writer, shown, all []catalog.Record) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NO.\tNAME\tTYPES\tHEIGHT (m)\tWEIGHT (kg)\tBASE EXP")
	for _, r := range shown {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f\t%.1f\t%d\n",
			r.Number(), r.DisplayName(), strings.Join(r.Types, ", "),
			r.HeightMetres(), r.WeightKilograms(), r.BaseExperience)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(shown) == 0 {
		fmt.Fprintln(out, "No Pokémon found. Try adjusting your type filters.")
	}
	fmt.Fprintf(out, "\n%d of %d shown. Types in range: %s\n",
		len(shown), len(all), strings.Join(view.AvailableTypes(all), ", "))
	return nil
}
