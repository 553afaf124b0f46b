package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newDocsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "docs",
		Short: "List documents indexed in the knowledge base",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := a.client.ListDocuments(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list documents: %w", err)
			}

			out := cmd.OutOrStdout()
			for _, name := range docs {
				fmt.Fprintf(out, "  %s\n", name)
			}
			fmt.Fprintf(out, "Documentos Indexados: %d\n", len(docs))
			return nil
		},
	}
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check that the backend is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			msg, err := a.client.Health(cmd.Context())
			if err != nil {
				a.logger.Warn("Health check failed", zap.Error(err))
				fmt.Fprintln(out, "Sistema no disponible")
				return err
			}
			fmt.Fprintf(out, "Sistema Operativo (%s)\n", msg)
			return nil
		},
	}
}
