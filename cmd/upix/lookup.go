package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/upiexplain/internal/catalog"
)

// errNoMatch makes lookup exit non-zero when nothing matched.
var errNoMatch = errors.New("no catalog entry matches")

func newLookupCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <code or message>",
		Short: "Explain an error code, message or description",
		Long: `Resolve the input against the catalog and print its explanation.

Examples:
  upix lookup U30
  upix lookup "transaction declined by bank"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := opts.service(ctx)
			if err != nil {
				return err
			}

			input := strings.Join(args, " ")
			result := svc.Search(ctx, input)
			if result.Blank {
				return fmt.Errorf("input is empty")
			}
			if !result.Found {
				fmt.Fprintln(cmd.OutOrStdout(), errorStyle.Render(fmt.Sprintf("✗ No catalog entry for %q", result.Input)))
				return fmt.Errorf("%w %q", errNoMatch, result.Input)
			}

			page, err := svc.Page(ctx, result.Slug, "")
			if err != nil {
				return err
			}
			renderPage(cmd.OutOrStdout(), page)
			fmt.Fprintln(cmd.OutOrStdout(), dimStyle.Render(fmt.Sprintf("matched by %s", result.Strategy)))
			return nil
		},
	}
}

func newRelatedCmd(opts *options) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "related <slug>",
		Short: "List errors related to a catalog entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return fmt.Errorf("--limit must not be negative")
			}
			ctx := cmd.Context()
			svc, err := opts.service(ctx)
			if err != nil {
				return err
			}

			slug := strings.ToLower(args[0])
			if _, ok := svc.Record(slug); !ok {
				return fmt.Errorf("%w %q", errNoMatch, args[0])
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, sectionStyle.Render("Related to "+strings.ToUpper(slug)))
			for _, r := range svc.RelatedTo(ctx, slug, limit) {
				fmt.Fprintf(out, "  %-6s %-40s %s\n", r.Code, r.Title, dimStyle.Render(fmt.Sprintf("score %d", r.Score)))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum results (default 5)")
	return cmd
}

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every error in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := opts.service(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, rec := range svc.Index() {
				fmt.Fprintf(out, "%-16s %-6s %s\n", rec.Slug, rec.Code, rec.Title)
			}
			return nil
		},
	}
}

func newValidateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Check that a catalog file parses",
		Long: `Parse a catalog file and report how many records it holds. Without a
file argument the --catalog file, or the built-in catalog, is checked.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := opts.source()
			if len(args) == 1 {
				source = catalog.NewFileSource(args[0])
			}

			cat, err := source.Read(cmd.Context())
			if err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), errorStyle.Render("✗ "+source.Name()))
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %d records\n", okStyle.Render("✓"), source.Name(), cat.Len())
			return nil
		},
	}
}
