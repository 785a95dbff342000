package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	catalogsvc "github.com/kailas-cloud/medtriage/internal/usecase/catalog"
)

func newCategoriesCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the classification table with document counts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCategories(cmd.Context(), v, cmd.OutOrStdout())
		},
	}
}

func runCategories(ctx context.Context, v *viper.Viper, out io.Writer) error {
	rt, err := loadRuntime(v)
	if err != nil {
		return err
	}
	defer func() { _ = rt.logger.Sync() }()

	a, err := openApp(ctx, rt)
	if err != nil {
		return err
	}
	defer a.Close()

	entries, err := catalogsvc.New(a.table, a.docRepo).List(ctx)
	if err != nil {
		return err
	}
	return printCategories(out, entries)
}

func printCategories(out io.Writer, entries []catalogsvc.Entry) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCATEGORY\tKEYWORDS\tHINTS\tDOCUMENTS")
	for _, e := range entries {
		name := e.Name
		if e.Fallback {
			name += " (fallback)"
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\n", e.SpecialtyID, name, e.KeywordCount, e.HintCount, e.Documents)
	}
	return tw.Flush()
}
