package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atenea-ai/atenea/internal/tutor"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Ejecuta las consultas de demostración",
	Long: `Procesa el conjunto fijo de consultas de demostración, una por nivel
de conocimiento, mostrando la evaluación y la respuesta de cada una.`,
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, args []string) error {
	a, err := setupApp(cmd)
	if err != nil {
		return fail(err)
	}
	defer func() { _ = a.Close() }()

	out := cmd.OutOrStdout()
	queries := tutor.DemoQueries()

	for i, q := range queries {
		fmt.Fprintf(out, "=== Consulta %d/%d: %s ===\n", i+1, len(queries), q.Text)

		state, err := a.Orchestrator.Process(cmd.Context(), q)
		if err != nil {
			printFailure(out, state)
			// One failed demo query should not abort the rest.
			continue
		}
		printAnswer(out, state)
		fmt.Fprintln(out)
	}
	return nil
}
