package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/crmport/internal/core"
	"github.com/JonMunkholm/crmport/internal/store"
)

func (a *app) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import a CSV file or ZIP bundle into the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, name, err := readInput(args[0], a.cfg.Import.MaxFileSize)
			if err != nil {
				return err
			}

			backend, err := store.Open(cmd.Context(), a.cfg.Database)
			if err != nil {
				return errors.Wrap(err, "open store")
			}
			defer backend.Close()

			report, err := core.NewService(backend, a.cfg.Import).Import(cmd.Context(), data, name)
			if err != nil {
				return err
			}

			printReport(cmd.OutOrStdout(), report)
			if !report.Success {
				return errors.Newf("import of %s failed with %d error(s)", name, len(report.Errors))
			}
			return nil
		},
	}
}

func (a *app) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a CSV file or ZIP bundle without importing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, name, err := readInput(args[0], a.cfg.Import.MaxFileSize)
			if err != nil {
				return err
			}

			results, err := core.ValidateImport(data, name)
			if err != nil {
				return err
			}

			invalid := printValidation(cmd.OutOrStdout(), results)
			if invalid > 0 {
				return errors.Newf("%d of %d file(s) failed validation", invalid, len(results))
			}
			return nil
		},
	}
}

func (a *app) exportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every entity as a ZIP of CSV files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				out = core.ExportFileName(time.Now().UTC())
			}

			backend, err := store.Open(cmd.Context(), a.cfg.Database)
			if err != nil {
				return errors.Wrap(err, "open store")
			}
			defer backend.Close()

			data, err := core.NewService(backend, a.cfg.Import).Export(cmd.Context())
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), out, data)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default CRM_Data_Export_<date>.zip)")
	return cmd
}

func (a *app) sampleCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Write the import template ZIP with one example row per file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := core.ExportSample()
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), out, data)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", core.SampleFileName, "Output file")
	return cmd
}

// readInput loads path, rejecting files over limit before reading them.
func readInput(path string, limit int64) ([]byte, string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, "", errors.Wrap(err, "open input")
	}
	if limit > 0 && info.Size() > limit {
		return nil, "", errors.WithHintf(
			errors.Newf("file too large: %d bytes (limit %d)", info.Size(), limit),
			"raise IMPORT_MAX_FILE_SIZE or split the bundle")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", errors.Wrap(err, "read input")
	}
	return data, filepath.Base(path), nil
}

func writeOutput(w io.Writer, path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create %s", dir)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	fmt.Fprintf(w, "Wrote %s (%d bytes)\n", path, len(data))
	return nil
}

func printReport(w io.Writer, r *core.Report) {
	if r.Success {
		fmt.Fprintln(w, "Import completed successfully")
	} else {
		fmt.Fprintln(w, "Import failed with validation errors")
	}

	for _, def := range core.All() {
		fmt.Fprintf(w, "  %-15s %d\n", def.Label, r.Imported[def.Type])
	}
	printList(w, "Errors", r.Errors)
	printList(w, "Warnings", r.Warnings)
}

// printValidation writes one table row per member and returns how many
// members are invalid.
func printValidation(w io.Writer, results []core.MemberValidation) int {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tTYPE\tRECORDS\tSTATUS")

	invalid := 0
	for _, r := range results {
		status := "valid"
		if !r.Valid {
			status = "invalid"
			invalid++
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", r.Filename, r.DataType, r.RecordCount, status)
	}
	tw.Flush()

	for _, r := range results {
		if len(r.Errors) > 0 {
			printList(w, r.Filename, r.Errors)
		}
	}
	return invalid
}

func printList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(w, "  - %s\n", strings.TrimSpace(item))
	}
}
