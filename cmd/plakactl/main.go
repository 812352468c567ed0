package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/frontandrew/plakatakip/internal/app"
	"github.com/frontandrew/plakatakip/internal/infrastructure/export"
	"github.com/frontandrew/plakatakip/internal/pkg/config"
	"github.com/frontandrew/plakatakip/internal/pkg/logger"
	"github.com/frontandrew/plakatakip/internal/repository/postgres/migrations"
	"github.com/frontandrew/plakatakip/internal/usecase/record"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// newApp читает конфигурацию из окружения и собирает приложение.
// Вызывающий обязан закрыть его через Close.
func newApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	log := logger.New(cfg.Logger.Level, "console", "stderr")

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

var rootCmd = &cobra.Command{
	Use:          "plakactl",
	Short:        "Plaka Takip maintenance tool",
	SilenceUsage: true,
}

// migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage PostgreSQL schema",
}

func migrateURL() (string, error) {
	cfg, err := config.Load()
	if err != nil {
		return "", fmt.Errorf("loading config: %w", err)
	}
	return cfg.Database.MigrateURL(), nil
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		url, err := migrateURL()
		if err != nil {
			return err
		}
		if err := migrations.Up(url); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back all migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		url, err := migrateURL()
		if err != nil {
			return err
		}
		if err := migrations.Down(url); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Migrations rolled back")
		return nil
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		url, err := migrateURL()
		if err != nil {
			return err
		}
		current, latest, dirty, err := migrations.Status(url)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Current: %d\nLatest:  %d\nDirty:   %t\n", current, latest, dirty)
		return nil
	},
}

// seed command
var seedForce bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Write sample records into empty categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		written, err := a.Seed(cmd.Context(), seedForce)
		if err != nil {
			return err
		}
		if len(written) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "All categories already have records")
			return nil
		}
		for _, entry := range a.Catalog.Entries() {
			if n, ok := written[entry.Code]; ok {
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s %d records\n", entry.Label, n)
			}
		}
		return nil
	},
}

// scan command
var scanWindow int

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Send SMS reminders for documents expiring soon",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		window := scanWindow
		if window <= 0 {
			window = a.Config.Scheduler.WindowDays
		}
		res, err := a.Notify.Scan(cmd.Context(), window)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Documents: %d\nNotified:  %d\nFailed:    %d\nSkipped:   %d\n",
			res.Documents, res.Notified, res.Failed, res.Skipped)
		return nil
	},
}

// export command
var (
	exportCategory string
	exportFormat   string
	exportOut      string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export category records to xlsx or doc",
	RunE: func(cmd *cobra.Command, args []string) error {
		format := strings.ToLower(exportFormat)
		if format != "xlsx" && format != "doc" {
			return fmt.Errorf("unsupported format %q", exportFormat)
		}
		all := strings.EqualFold(exportCategory, "all")
		if all && format != "xlsx" {
			return fmt.Errorf("--category all is only supported for xlsx")
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		sheets, err := exportSheets(cmd.Context(), a, all)
		if err != nil {
			return err
		}

		out := exportOut
		if out == "" {
			out = export.AllRecordsXLSX
			if !all {
				out = export.FileName(sheets[0].Entry, format)
			}
		}

		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("creating %s: %w", out, err)
		}
		if err := render(a.Exporter, f, format, sheets); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("closing %s: %w", out, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Written %s\n", out)
		return nil
	},
}

func exportSheets(ctx context.Context, a *app.App, all bool) ([]export.Sheet, error) {
	if !all {
		entry, records, err := a.Records.Records(ctx, exportCategory)
		if err != nil {
			return nil, err
		}
		return []export.Sheet{{Entry: entry, Records: records}}, nil
	}

	snapshot, err := a.Dashboard.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	sheets := make([]export.Sheet, 0, len(snapshot))
	for _, entry := range a.Catalog.Entries() {
		sheets = append(sheets, export.Sheet{Entry: entry, Records: record.SortByOwnerType(snapshot[entry.Code])})
	}
	return sheets, nil
}

func render(e *export.Exporter, w io.Writer, format string, sheets []export.Sheet) error {
	if format == "doc" {
		return e.Word(w, sheets[0].Entry, sheets[0].Records)
	}
	return e.Workbook(w, sheets)
}

func init() {
	// migrate subcommands
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(migrateCmd)

	seedCmd.Flags().BoolVar(&seedForce, "force", false, "overwrite categories that already have records")
	rootCmd.AddCommand(seedCmd)

	scanCmd.Flags().IntVar(&scanWindow, "window", 0, "days ahead to check (default SCHEDULER_WINDOW_DAYS)")
	rootCmd.AddCommand(scanCmd)

	exportCmd.Flags().StringVar(&exportCategory, "category", "M", "plate type (M, S, J, T, D4, D4S) or all")
	exportCmd.Flags().StringVar(&exportFormat, "format", "xlsx", "xlsx or doc")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file")
	rootCmd.AddCommand(exportCmd)
}
