package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	chiTransport "github.com/kailas-cloud/medtriage/internal/transport/chi"
	triageuc "github.com/kailas-cloud/medtriage/internal/usecase/triage"
)

type triageOptions struct {
	symptoms      string
	history       string
	age           int
	evidenceLimit int
	asJSON        bool
}

func newTriageCmd(v *viper.Viper) *cobra.Command {
	var opts triageOptions

	cmd := &cobra.Command{
		Use:   "triage [symptoms...]",
		Short: "Triage one symptom description and print the report",
		Example: `  medtriage triage --symptoms "dor no peito e falta de ar" --age 35
  medtriage triage --history "hipertensao" --json dor de cabeca muito forte`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.symptoms == "" {
				opts.symptoms = strings.Join(args, " ")
			}
			return runTriage(cmd.Context(), v, opts, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.symptoms, "symptoms", "", "symptom description (at least 3 words)")
	f.StringVar(&opts.history, "history", "", "medical history")
	f.IntVar(&opts.age, "age", 0, "patient age in years (0 = not informed)")
	f.IntVar(&opts.evidenceLimit, "evidence-limit", 0, "evidence items to show (default from config)")
	f.BoolVar(&opts.asJSON, "json", false, "print the report as JSON")
	return cmd
}

func runTriage(ctx context.Context, v *viper.Viper, opts triageOptions, out io.Writer) error {
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

	svc := a.buildTriage(a.buildEmbedder(rt.cfg.Embedding.QueryInstruction))
	rep, err := svc.Triage(ctx, triageuc.Request{
		Symptoms:      opts.symptoms,
		History:       opts.history,
		Age:           opts.age,
		EvidenceLimit: opts.evidenceLimit,
	})
	if err != nil {
		return err
	}

	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(chiTransport.NewTriageResponse(&rep))
	}
	printReport(out, &rep)
	return nil
}

// printReport renders a report for the terminal.
func printReport(w io.Writer, rep *triageuc.Report) {
	rule := strings.Repeat("=", 60)

	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Triage report %s\n", rep.ID)
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Referral:        %s (specialty %d)\n", rep.Category, rep.SpecialtyID)
	fmt.Fprintf(w, "Urgency:         %s\n", rep.Urgency)

	printList(w, "Alerts", rep.Alerts)
	printList(w, "Possible diagnoses", rep.DiagnosesHint)

	fmt.Fprintln(w)
	if len(rep.Evidence) == 0 {
		fmt.Fprintln(w, "Evidence:        none")
	} else {
		fmt.Fprintln(w, "Evidence:")
		for _, e := range rep.Evidence {
			title := e.Title
			if title == "" {
				title = "document " + e.Source
			}
			fmt.Fprintf(w, "  [%s] %s (source %s)\n", e.Confidence, title, e.Source)
			fmt.Fprintf(w, "      %s\n", e.Text)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Recommendation:  %s\n", rep.Recommendation)
	if rep.Narrative != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, rep.Narrative)
	}
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, rep.Disclaimer)
}

func printList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "%s:\n", title)
	for _, it := range items {
		fmt.Fprintf(w, "  - %s\n", it)
	}
}
