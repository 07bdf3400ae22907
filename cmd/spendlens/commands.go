package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/bwmarrin/snowflake"
	analyticsdomain "github.com/rajesh196rsh/e-commerce/internal/analytics/domain"
	ingestdomain "github.com/rajesh196rsh/e-commerce/internal/ingest/domain"
	"github.com/rajesh196rsh/e-commerce/internal/report"
	"github.com/rajesh196rsh/e-commerce/internal/seed"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "spendlens",
		Short:         "Customer spending analytics over the order catalog",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "path to a YAML config file")

	root.AddCommand(
		newReportCommand(),
		newCategoriesCommand(),
		newImportCommand(),
		newScheduleCommand(),
		newSeedCommand(),
		newEventsCommand(),
	)
	return root
}

type outputFlags struct {
	format string
	out    string
}

func (o *outputFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.format, "format", "", "output format: csv, json or html (default from --out extension, else csv)")
	cmd.Flags().StringVarP(&o.out, "out", "o", "", "write to file instead of stdout")
}

func (o *outputFlags) write(stdout io.Writer, doc report.Document) error {
	formatName := o.format
	if formatName == "" && o.out != "" {
		formatName = filepath.Ext(o.out)
	}
	format, err := report.ParseFormat(formatName)
	if err != nil {
		return err
	}
	if o.out != "" {
		return report.WriteFile(o.out, format, doc)
	}
	renderer, err := report.NewRenderer(format)
	if err != nil {
		return err
	}
	return renderer.Render(stdout, doc)
}

func newReportCommand() *cobra.Command {
	var (
		output outputFlags
		limit  int
		window string
		asOf   string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Top spending customers over a trailing window",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, d deps) error {
				req := analyticsdomain.Request{Limit: d.Config.Report.Limit}
				if cmd.Flags().Changed("limit") {
					req.Limit = limit
				}
				if window != "" {
					w, err := analyticsdomain.ParseWindow(window)
					if err != nil {
						return err
					}
					req.Window = w
				}
				req.AsOf = d.Clock.Now()
				if asOf != "" {
					at, err := parseAsOf(asOf)
					if err != nil {
						return err
					}
					req.AsOf = at
				}

				rows, err := d.Analytics.TopSpendingCustomers(ctx, req)
				if err != nil {
					return err
				}

				resolvedWindow := window
				if resolvedWindow == "" {
					resolvedWindow = d.Config.Report.Window
				}
				return output.write(cmd.OutOrStdout(), report.Document{
					Title:       "Top Spending Customers",
					GeneratedAt: d.Clock.Now(),
					AsOf:        req.AsOf,
					Window:      resolvedWindow,
					Customers:   rows,
				})
			})
		},
	}
	output.bind(cmd)
	cmd.Flags().IntVarP(&limit, "limit", "n", analyticsdomain.DefaultLimit, "number of customers to return (default from config)")
	cmd.Flags().StringVar(&window, "window", "", "trailing window such as 2y, 18mo, 90d (default from config)")
	cmd.Flags().StringVar(&asOf, "as-of", "", "reference time, RFC 3339 or YYYY-MM-DD (default now)")
	return cmd
}

func parseAsOf(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if at, err := time.Parse(layout, value); err == nil {
			return at.UTC(), nil
		}
	}
	return time.Time{}, &analyticsdomain.InvalidParameterError{Field: "as_of", Reason: fmt.Sprintf("unrecognized time %q", value)}
}

func newCategoriesCommand() *cobra.Command {
	var output outputFlags
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Revenue and best selling product per category",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, d deps) error {
				categories, err := d.Analytics.CategorySummary(ctx)
				if err != nil {
					return err
				}
				if categories == nil {
					categories = []analyticsdomain.CategorySummary{}
				}
				return output.write(cmd.OutOrStdout(), report.Document{
					Title:       "Category Summary",
					GeneratedAt: d.Clock.Now(),
					Categories:  categories,
				})
			})
		},
	}
	output.bind(cmd)
	return cmd
}

func newImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "import <customers|products|orders|order_line_items> <file.csv>",
		Short:     "Load a CSV file into the catalog",
		Args:      cobra.ExactArgs(2),
		ValidArgs: kindNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := ingestdomain.ParseKind(args[0])
			if err != nil {
				return fmt.Errorf("%w: %s", err, args[0])
			}
			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer f.Close()

			return withApp(cmd, func(ctx context.Context, d deps) error {
				run, err := d.Ingest.Import(ctx, kind, filepath.Base(args[1]), f)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "import %s: %d rows, %d inserted, %d merged, %d failed\n",
					run.ID, run.Total, run.Inserted, run.Merged, run.Failed)
				return nil
			})
		},
	}
}

func kindNames() []string {
	kinds := ingestdomain.Kinds()
	names := make([]string, 0, len(kinds))
	for _, k := range kinds {
		names = append(names, string(k))
	}
	return names
}

func newScheduleCommand() *cobra.Command {
	var once bool
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Regenerate the report file on the configured interval",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, d deps) error {
				if once {
					return d.Worker.RunOnce(ctx)
				}
				ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
				defer stop()

				d.Log.Info("report schedule started",
					zap.Duration("interval", d.Config.Schedule.Interval),
					zap.String("path", d.Config.Schedule.OutputPath),
				)
				d.Worker.RunForever(ctx)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "run a single time and exit")
	return cmd
}

func newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert a small demo catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, d deps) error {
				if err := seed.EnsureDemoData(ctx, d.DB, d.Clock.Now()); err != nil {
					return err
				}
				if err := d.Cache.Invalidate(ctx); err != nil {
					d.Log.Warn("report cache not invalidated", zap.Error(err))
				}
				fmt.Fprintln(cmd.OutOrStdout(), "demo data ready")
				return nil
			})
		},
	}
}

func newEventsCommand() *cobra.Command {
	var (
		limit int
		ack   bool
	)
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Print undelivered analytics events as JSON lines",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, d deps) error {
				pending, err := d.Outbox.Pending(ctx, limit)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				ids := make([]snowflake.ID, 0, len(pending))
				for _, rec := range pending {
					if err := enc.Encode(map[string]any{
						"id":         rec.ID.String(),
						"type":       rec.EventType,
						"payload":    rec.Payload,
						"created_at": rec.CreatedAt.UTC().Format(time.RFC3339),
					}); err != nil {
						return err
					}
					ids = append(ids, rec.ID)
				}
				if !ack {
					return nil
				}
				return d.Outbox.MarkPublished(ctx, ids...)
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 100, "maximum number of events to print")
	cmd.Flags().BoolVar(&ack, "ack", false, "mark printed events as delivered")
	return cmd
}
