package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sadopc/tabtrackr/internal/activity"
	"github.com/sadopc/tabtrackr/internal/config"
	"github.com/sadopc/tabtrackr/internal/export"
)

var (
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export visits, the time ledger or a full snapshot",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "visits-csv", "Output format: visits-csv, ledger-csv, json")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	return withService(func(_ *config.Config, svc *activity.Service) error {
		snap, err := svc.Snapshot(cmd.Context())
		if err != nil {
			return err
		}

		var write func(io.Writer) error
		switch exportFormat {
		case "visits-csv":
			write = func(w io.Writer) error { return export.WriteVisitsCSV(w, snap.Visits) }
		case "ledger-csv":
			write = func(w io.Writer) error { return export.WriteLedgerCSV(w, snap.Ledger, svc.Classifier()) }
		case "json":
			write = func(w io.Writer) error { return export.WriteJSON(w, snap, now()) }
		default:
			return fmt.Errorf("unknown format %q (want visits-csv, ledger-csv or json)", exportFormat)
		}

		if exportOutput == "" || exportOutput == "-" {
			return write(cmd.OutOrStdout())
		}
		f, err := os.Create(exportOutput)
		if err != nil {
			return err
		}
		if err := write(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported to %s\n", exportOutput)
		return nil
	})
}
