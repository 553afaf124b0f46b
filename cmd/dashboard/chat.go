package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"soporte.ai/dashboard/internal/core"
)

const exitCommand = "/salir"

func newChatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chat [question...]",
		Short: "Ask the support agent, once or interactively",
		Long: `With a question, runs a single round-trip and prints the answer.
Without one, reads questions line by line until EOF or /salir.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			sim := core.NewChatSimulator(a.client,
				core.WithChatLogger(a.logger),
				core.WithFallbackMessage(a.cfg.FallbackMessage),
			)

			if len(args) > 0 {
				reply, err := sim.Ask(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return err
				}
				fmt.Fprintln(out, reply.Content)
				return nil
			}

			fmt.Fprintln(out, "Inicia una conversación para probar el agente.")
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, "> ")
				if !scanner.Scan() {
					break
				}
				line := scanner.Text()
				if strings.TrimSpace(line) == exitCommand {
					break
				}

				sim.SetPendingInput(line)
				reply, err := sim.Send(cmd.Context())
				if errors.Is(err, core.ErrEmptyQuestion) {
					continue
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "bot: %s\n", reply.Content)
			}
			fmt.Fprintln(out)

			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}
			fmt.Fprintf(out, "Consultas: %d\n", sim.Snapshot().RoundTrips)
			return nil
		},
	}
}
