package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atenea-ai/atenea/internal/history"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [estudiante]",
	Short: "Muestra las evaluaciones recientes de un estudiante",
	Long: `Lista las evaluaciones archivadas de un estudiante, de la más
reciente a la más antigua. Requiere el backend postgres.`,
	Args: cobra.ExactArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "número máximo de evaluaciones")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := setupApp(cmd)
	if err != nil {
		return fail(err)
	}
	defer func() { _ = a.Close() }()

	if a.History == nil {
		return fail(errors.New("el historial requiere index_backend: postgres"))
	}

	studentID := args[0]
	entries, err := a.History.Recent(cmd.Context(), studentID, historyLimit)
	if errors.Is(err, history.ErrNoHistory) {
		fmt.Fprintf(cmd.OutOrStdout(), "Sin evaluaciones para %s.\n", studentID)
		return nil
	}
	if err != nil {
		return fail(err)
	}

	out := cmd.OutOrStdout()
	dominant, err := a.History.DominantLevel(cmd.Context(), studentID)
	if err == nil && dominant != "" {
		fmt.Fprintf(out, "Nivel dominante: %s\n\n", dominant)
	}
	for _, e := range entries {
		fmt.Fprintf(out, "%s  %-13s %-11s %s\n",
			e.CreatedAt.Format("2006-01-02 15:04"), e.Level, e.Difficulty, e.QueryText)
	}
	return nil
}
