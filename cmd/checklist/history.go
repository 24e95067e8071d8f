package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportOut    string
	clearYes     bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect or manage the checklist history file",
}

var historyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the history as a table",
	RunE:  historyShow,
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the history as CSV or XLSX",
	Long: `Writes the history to a file or stdout.

Example:
  checklist history export --format xlsx -o history.xlsx`,
	RunE: historyExport,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every history record",
	RunE:  historyClear,
}

func init() {
	historyExportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "csv or xlsx")
	historyExportCmd.Flags().StringVarP(&exportOut, "output", "o", "-", "output file, - for stdout")
	historyClearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "do not ask for confirmation")

	historyCmd.AddCommand(historyShowCmd, historyExportCmd, historyClearCmd)
}

func historyShow(cmd *cobra.Command, args []string) error {
	tbl, err := newRepository().List(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if tbl.Len() == 0 {
		fmt.Fprintln(out, "No history records.")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(tbl.Columns, "\t"))
	for _, row := range tbl.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func historyExport(cmd *cobra.Command, args []string) error {
	repo := newRepository()
	var (
		data []byte
		err  error
	)
	switch exportFormat {
	case "csv":
		data, err = repo.ExportCSV(cmd.Context())
	case "xlsx":
		data, err = repo.ExportXLSX(cmd.Context())
	default:
		return fmt.Errorf("unknown format %q (csv, xlsx)", exportFormat)
	}
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if exportOut != "-" {
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", exportOut, err)
		}
		defer f.Close()
		w = f
	}
	_, err = w.Write(data)
	return err
}

func historyClear(cmd *cobra.Command, args []string) error {
	if !clearYes {
		fmt.Fprintf(cmd.OutOrStdout(), "Refusing to clear %s without --yes\n", cfg.History.File)
		return nil
	}
	if err := newRepository().Clear(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", cfg.History.File)
	return nil
}
