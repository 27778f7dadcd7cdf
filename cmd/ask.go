package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atenea-ai/atenea/internal/tutor"
)

var (
	askSubject string
	askStudent string
)

var askCmd = &cobra.Command{
	Use:   "ask [consulta]",
	Short: "Haz una consulta al tutor",
	Long: `Procesa una consulta a través del pipeline completo: evaluación de
nivel, recuperación de material y síntesis de una respuesta adaptada.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askSubject, "subject", "s", "", "materia de la consulta (ej. algebra_lineal)")
	askCmd.Flags().StringVar(&askStudent, "student", "", "identificador del estudiante, habilita el historial")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := setupApp(cmd)
	if err != nil {
		return fail(err)
	}
	defer func() { _ = a.Close() }()

	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return fail(errors.New("la consulta no puede estar vacía"))
	}

	q := tutor.NewQuery(question, askSubject, askStudent)
	state, err := a.Orchestrator.Process(cmd.Context(), q)
	if err != nil {
		printFailure(cmd.OutOrStdout(), state)
		return err
	}

	printAnswer(cmd.OutOrStdout(), state)
	return nil
}

// printAnswer renders a terminal answer with its transparency block:
// the assessment and the sources that informed the response.
func printAnswer(w io.Writer, state *tutor.PipelineState) {
	fmt.Fprintln(w, state.Answer)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "---")
	if eval := state.Evaluation; eval != nil {
		fmt.Fprintf(w, "Nivel estimado: %s | Dificultad: %s\n", eval.Level, eval.Difficulty)
		if eval.Recommendation != "" {
			fmt.Fprintf(w, "Enfoque: %s\n", eval.Recommendation)
		}
	}

	if state.Degraded() {
		fmt.Fprintln(w, "Sin material de apoyo en el corpus; respuesta desde conocimiento general.")
		return
	}
	fmt.Fprintln(w, "Fuentes:")
	for i, r := range state.Results {
		fmt.Fprintf(w, "  %d. %s (%s, similitud %.2f)\n", i+1, r.Item.Title, r.Item.Level, r.Score)
	}
}

// printFailure renders the failure descriptor of a failed pipeline.
func printFailure(w io.Writer, state *tutor.PipelineState) {
	if state == nil || state.Err == nil {
		return
	}
	fmt.Fprintf(w, "La consulta no pudo procesarse.\n")
	fmt.Fprintf(w, "Etapa: %s | Causa: %s\n", state.Err.Stage, state.Err.Category())
}
