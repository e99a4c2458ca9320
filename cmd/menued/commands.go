package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/A-Disruption/property-menu-builder-sub000/internal/domain"
	"github.com/A-Disruption/property-menu-builder-sub000/internal/export"
	"github.com/A-Disruption/property-menu-builder-sub000/internal/posfile"
	"github.com/A-Disruption/property-menu-builder-sub000/internal/rulefile"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "menued",
		Short:         "Edit POS menu catalogs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		importCmd(a),
		exportCmd(a),
		applyCmd(a),
		validateCmd(a),
		listCmd(a),
		deleteCmd(a),
		journalCmd(a),
		xlsxCmd(a),
		csvCmd(a),
		checkCmd(a),
		catalogsCmd(a),
		dropCmd(a),
		prefsCmd(a),
	)
	return root
}

func importCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import POS item records into the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := a.editor.ImportFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "records: %d, imported: %d, skipped: %d\n", rep.Records, rep.Imported, rep.Skipped)
			for _, kind := range domain.Kinds {
				if n := rep.CreatedOf(kind); n > 0 {
					fmt.Fprintf(out, "created %d %s\n", n, kind)
				}
			}
			for _, ref := range rep.Missing {
				fmt.Fprintf(out, "missing %s\n", ref)
			}
			for _, d := range rep.Diagnostics {
				fmt.Fprintf(out, "skipped: %s\n", d)
			}
			return a.editor.Persist(cmd.Context())
		},
	}
}

func exportCmd(a *app) *cobra.Command {
	var eol string
	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Write the catalog as a POS item file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if eol != "" {
				le, err := posfile.ParseLineEnding(eol)
				if err != nil {
					return err
				}
				a.editor.LineEnding = le
			}
			n, err := a.editor.ExportFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d records to %s\n", n, args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&eol, "eol", "", "record terminator, lf or crlf (default: the catalog's saved one)")
	return cmd
}

func applyCmd(a *app) *cobra.Command {
	var commit bool
	cmd := &cobra.Command{
		Use:   "apply RULE",
		Short: "Preview a bulk-edit rule, and commit it with --commit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rule, err := rulefile.Load(a.editor.RulePath(cmd.Context(), args[0]))
			if err != nil {
				return err
			}
			p := a.editor.Preview(rule)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "matched %d items, %d would change\n", len(p.Matched), len(p.Changed))
			for _, id := range p.Changed {
				fmt.Fprintf(out, "item %d\n", id)
				for _, c := range p.Changes[id] {
					fmt.Fprintf(out, "  %s\n", c)
				}
			}
			for _, d := range p.Diagnostics {
				fmt.Fprintf(out, "warning: %s\n", d)
			}
			if !commit {
				return a.editor.Cancel()
			}
			changed, err := a.editor.Commit(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "committed %d items\n", len(changed))
			return nil
		},
	}
	cmd.Flags().BoolVar(&commit, "commit", false, "accept the previewed changes")
	return cmd
}

func validateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check every entity of the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			errs := a.editor.Validate()
			for _, err := range errs {
				fmt.Fprintln(cmd.OutOrStdout(), err)
			}
			if len(errs) > 0 {
				return fmt.Errorf("%d invalid entities", len(errs))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "catalog is valid")
			return nil
		},
	}
}

func listCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list [KIND]",
		Short: "List the entities of one kind, items by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := domain.KindItem
			if len(args) == 1 {
				k, err := domain.ParseKind(args[0])
				if err != nil {
					return err
				}
				kind = k
			}
			cat := a.editor.Catalog()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, e := range cat.Iter(kind) {
				fmt.Fprintf(tw, "%d\t%s\n", e.Ref().ID, e.DisplayName())
			}
			return tw.Flush()
		},
	}
}

func deleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete KIND ID",
		Short: "Delete one entity that nothing references",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := domain.ParseKind(args[0])
			if err != nil {
				return err
			}
			id, err := strconv.ParseInt(args[1], 10, 32)
			if err != nil {
				return fmt.Errorf("id %q: %w", args[1], err)
			}
			if err := a.editor.DeleteEntity(domain.Ref{Kind: kind, ID: domain.ID(id)}); err != nil {
				return err
			}
			return a.editor.Persist(cmd.Context())
		},
	}
}

func journalCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show committed bulk-edit changes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			changes, err := a.editor.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, c := range changes {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n",
					c.CommittedAt.Format("2006-01-02 15:04:05"), c.ItemID, c.Field, c.Before, c.After)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of changes")
	return cmd
}

func xlsxCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "xlsx FILE",
		Short: "Write a spreadsheet listing of the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeFile(args[0], func(w io.Writer) error {
				return export.WriteXLSX(w, a.editor.Catalog())
			})
		},
	}
}

func csvCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "csv FILE",
		Short: "Write a CSV listing of the catalog items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeFile(args[0], func(w io.Writer) error {
				return export.WriteCSV(w, a.editor.Catalog())
			})
		},
	}
}

func checkCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Probe the configured storage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.check(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}

func catalogsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "catalogs",
		Short: "List the stored catalogs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names, err := a.catalogs.Names(cmd.Context())
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
}

func dropCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "drop NAME",
		Short: "Delete a stored catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.catalogs.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.logger.Info("catalog dropped", "catalog", args[0])
			return nil
		},
	}
}

func prefsCmd(a *app) *cobra.Command {
	var ruleDir, eol string
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change the editor preferences of the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			p, err := a.editor.Preferences(ctx)
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return err
			}
			if cmd.Flags().Changed("rule-dir") || cmd.Flags().Changed("eol") {
				if cmd.Flags().Changed("eol") {
					le, err := posfile.ParseLineEnding(eol)
					if err != nil {
						return err
					}
					p.LineEnding = le.Name()
				}
				if cmd.Flags().Changed("rule-dir") {
					p.RuleDir = ruleDir
				}
				if p, err = a.editor.SavePreferences(ctx, p); err != nil {
					return err
				}
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "line ending\t%s\n", p.LineEnding)
			fmt.Fprintf(tw, "rule dir\t%s\n", p.RuleDir)
			fmt.Fprintf(tw, "last import\t%s\n", p.LastImport)
			fmt.Fprintf(tw, "last export\t%s\n", p.LastExport)
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&ruleDir, "rule-dir", "", "directory searched for rule files")
	cmd.Flags().StringVar(&eol, "eol", "", "record terminator for exports, lf or crlf")
	return cmd
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	werr := write(f)
	cerr := f.Close()
	return errors.Join(werr, cerr)
}
