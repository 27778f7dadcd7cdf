package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atenea-ai/atenea/internal/content"
)

var (
	contentSubject string
	contentLevel   string
)

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Lista el corpus educativo",
	RunE:  runContent,
}

func init() {
	contentCmd.Flags().StringVarP(&contentSubject, "subject", "s", "", "filtra por materia")
	contentCmd.Flags().StringVarP(&contentLevel, "level", "l", "", "filtra por nivel (basic, intermediate, advanced)")
	rootCmd.AddCommand(contentCmd)
}

func runContent(cmd *cobra.Command, args []string) error {
	a, err := setupApp(cmd)
	if err != nil {
		return fail(err)
	}
	defer func() { _ = a.Close() }()

	out := cmd.OutOrStdout()

	items := a.Content.List()
	if contentSubject != "" {
		items = a.Content.ListBySubject(contentSubject)
	}
	if contentLevel != "" {
		level, err := content.ParseLevel(contentLevel)
		if err != nil {
			return fail(fmt.Errorf("nivel %q no reconocido: %w", contentLevel, err))
		}
		filtered := items[:0]
		for _, it := range items {
			if it.Level == level {
				filtered = append(filtered, it)
			}
		}
		items = filtered
	}

	for _, it := range items {
		fmt.Fprintf(out, "%-45s %-13s %-10s %s\n", it.ID, it.Level, it.Type, it.Title)
	}

	indexed, err := a.Index.Count(cmd.Context())
	if err != nil {
		return fail(fmt.Errorf("reading index size: %w", err))
	}
	fmt.Fprintf(out, "\n%d elementos en el corpus, %d indexados (backend %s, versión %d)\n",
		a.Content.Len(), indexed, a.Config.IndexBackend, a.Content.Version())
	return nil
}
