package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vamsikrishnavetsa/truestate/internal/api/sale/predicate"
	salesvc "github.com/vamsikrishnavetsa/truestate/internal/api/sale/service"
)

type queryFlags struct {
	search  string
	filters string
}

func (q *queryFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&q.search, "search", "", "search text (customer name, phone, customer id, product name)")
	cmd.Flags().StringVar(&q.filters, "filters", "", `filters as JSON, e.g. '{"customerRegion":["North"]}'`)
}

func (q *queryFlags) parse() (predicate.Filters, error) {
	if q.filters == "" {
		return predicate.Filters{}, nil
	}
	f, err := predicate.ParseFilters([]byte(q.filters))
	if err != nil {
		return nil, fmt.Errorf("invalid --filters: %w", err)
	}
	return f, nil
}

func newCountCmd() *cobra.Command {
	var q queryFlags
	cmd := &cobra.Command{
		Use:   "count",
		Short: "Count sales matching search and filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filters, err := q.parse()
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Service.QuerySales(ctx, salesvc.QueryInput{
				PageSize: 1,
				Search:   q.search,
				Filters:  filters,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Total)
			return nil
		},
	}
	q.bind(cmd)
	return cmd
}

func newFiltersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "filters",
		Short: "Print the filter option sets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			opts, err := a.Service.GetFilterOptions(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), opts)
		},
	}
}

func newQueryCmd() *cobra.Command {
	var (
		q         queryFlags
		page      int64
		pageSize  int64
		sortBy    string
		sortOrder int
		output    string
	)
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Fetch one page of sales",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filters, err := q.parse()
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Service.QuerySales(ctx, salesvc.QueryInput{
				Page:      page,
				PageSize:  pageSize,
				SortBy:    sortBy,
				SortOrder: sortOrder,
				Search:    q.search,
				Filters:   filters,
			})
			if err != nil {
				return err
			}
			if output == "json" {
				return printJSON(cmd.OutOrStdout(), res)
			}
			return printTable(res)
		},
	}
	q.bind(cmd)
	cmd.Flags().Int64Var(&page, "page", 1, "page number")
	cmd.Flags().Int64Var(&pageSize, "page-size", 10, "rows per page")
	cmd.Flags().StringVar(&sortBy, "sort-by", "date", "date, quantity, customerName or finalAmount")
	cmd.Flags().IntVar(&sortOrder, "sort-order", -1, "1 ascending, -1 descending")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "table or json")
	return cmd
}

func printTable(res *salesvc.QueryResult) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tCUSTOMER\tREGION\tPRODUCT\tQTY\tFINAL AMOUNT")
	for _, s := range res.Results {
		date, qty, amount := "-", "-", "-"
		if s.Date != nil {
			date = s.Date.Format("2006-01-02")
		}
		if s.Quantity != nil {
			qty = fmt.Sprint(*s.Quantity)
		}
		if s.FinalAmount != nil {
			amount = fmt.Sprintf("%.2f", *s.FinalAmount)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", date, s.CustomerName, s.CustomerRegion, s.ProductName, qty, amount)
	}
	fmt.Fprintf(w, "\npage %d, %d of %d rows\n", res.Page, len(res.Results), res.Total)
	return w.Flush()
}
