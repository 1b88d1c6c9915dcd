// Package main implements upix, a terminal client for the UPI error catalog.
//
// Lookups run against the embedded catalog (or --catalog) without a server;
// health talks to a running upiexplaind.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/upiexplain/internal/catalog"
	"github.com/fyrsmithlabs/upiexplain/internal/explain"
	"github.com/fyrsmithlabs/upiexplain/internal/resolver"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// options holds the persistent flags shared by every command.
type options struct {
	catalogPath string
	serverURL   string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "upix",
		Short: "Explain UPI and bank error codes",
		Long: `upix looks up UPI and bank error codes, messages and descriptions in the
error catalog and prints what they mean and what to do next.

Examples:
  # Explain a code
  upix lookup U30

  # Free text works too
  upix lookup "wrong pin entered"

  # Use a catalog file instead of the built-in one
  upix --catalog ./errors.json list`,
		Version:      version,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.catalogPath, "catalog", "", "catalog file (.json or .toml) to use instead of the built-in one")

	root.AddCommand(
		newLookupCmd(opts),
		newRelatedCmd(opts),
		newListCmd(opts),
		newValidateCmd(opts),
		newHealthCmd(opts),
	)
	return root
}

func (o *options) source() catalog.Source {
	if o.catalogPath != "" {
		return catalog.NewFileSource(o.catalogPath)
	}
	return catalog.EmbeddedSource()
}

// service builds an explain service over the selected catalog, without AI.
func (o *options) service(ctx context.Context) (*explain.Service, error) {
	store, err := catalog.NewStore(o.source(), nil)
	if err != nil {
		return nil, err
	}
	if _, err := store.Load(ctx); err != nil {
		return nil, err
	}
	engine, err := resolver.NewEngine(store, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create resolver: %w", err)
	}
	return explain.NewService(store, engine, nil, nil)
}
