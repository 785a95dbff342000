package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	documentuc "github.com/kailas-cloud/medtriage/internal/usecase/document"
)

func newIngestCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <manifest.yaml>",
		Short: "Vectorize and store protocol documents listed in a YAML manifest",
		Long: `Reads a manifest of the form

  documents:
    - specialty_id: 2
      title: Chest pain protocol
      text: ...

embeds every document and stores it in the protocol database.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd.Context(), v, args[0], cmd.OutOrStdout())
		},
	}
}

func runIngest(ctx context.Context, v *viper.Viper, path string, out io.Writer) error {
	items, err := documentuc.LoadManifest(path)
	if err != nil {
		return err
	}

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

	if err := a.openCache(ctx); err != nil {
		return err
	}

	// Documents are embedded without the query instruction.
	svc := documentuc.New(a.docRepo, a.table, a.buildEmbedder(""), rt.cfg.Embedding.Dimensions)

	var failed int
	for _, r := range svc.IngestAll(ctx, items) {
		if r.Err != nil {
			failed++
			rt.logger.Warn("Document not ingested", zap.Int("index", r.Index), zap.Error(r.Err))
			fmt.Fprintf(out, "#%d %q: %v\n", r.Index, items[r.Index].Title, r.Err)
			continue
		}
		fmt.Fprintf(out, "#%d %q: stored as %d\n", r.Index, items[r.Index].Title, r.ID)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(items))
	}
	return nil
}
