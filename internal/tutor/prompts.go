package tutor

import (
	"fmt"
	"strings"

	"github.com/atenea-ai/atenea/internal/index"
)

// Prompt construction for the two generation call sites. Prompts are in
// Spanish, matching the corpus language; the structured output contract
// uses fixed English JSON keys and enum values so parsing stays stable
// across model providers.

// evaluatorPrompt requests a structured assessment of the query.
func evaluatorPrompt(q Query) string {
	var b strings.Builder
	b.WriteString("Eres un Agente Evaluador experto en educación. ")
	b.WriteString("Evalúa el nivel de conocimiento aparente del estudiante a partir de su consulta.\n\n")
	fmt.Fprintf(&b, "Consulta del estudiante: %s\n", q.Text)
	if q.Subject != "" {
		fmt.Fprintf(&b, "Materia: %s\n", q.Subject)
	}
	b.WriteString(`
Responde únicamente con un objeto JSON con exactamente estas claves:
{"level": "basic|intermediate|advanced", "difficulty": "conceptual|procedural|applied", "recommendation": "<enfoque de enseñanza sugerido>"}
`)
	return b.String()
}

// strictEvaluatorPrompt is the single-retry variant used after a parse
// failure. Same request, harder constraints on the output shape.
func strictEvaluatorPrompt(q Query) string {
	var b strings.Builder
	b.WriteString("Clasifica la siguiente consulta de un estudiante.\n\n")
	fmt.Fprintf(&b, "Consulta: %s\n", q.Text)
	if q.Subject != "" {
		fmt.Fprintf(&b, "Materia: %s\n", q.Subject)
	}
	b.WriteString(`
Tu respuesta DEBE ser únicamente JSON válido, sin texto adicional, sin markdown.
Formato exacto: {"level": "...", "difficulty": "...", "recommendation": "..."}
Valores permitidos para "level": basic, intermediate, advanced.
Valores permitidos para "difficulty": conceptual, procedural, applied.
`)
	return b.String()
}

// coordinatorPrompt builds the synthesis prompt. Each retrieved source
// is wrapped in a provenance marker so generated phrasing can be traced
// back to the contributing item.
func coordinatorPrompt(q Query, eval Evaluation, results []index.RankedResult, maxSourceChars int) string {
	var b strings.Builder
	b.WriteString("Eres un Tutor Académico Personalizado")
	if q.Subject != "" {
		fmt.Fprintf(&b, " experto en %s", q.Subject)
	}
	b.WriteString(". Proporciona una explicación clara y adaptada al nivel del estudiante.\n\n")

	b.WriteString("INFORMACIÓN DEL ESTUDIANTE:\n")
	fmt.Fprintf(&b, "- Consulta: %s\n", q.Text)
	fmt.Fprintf(&b, "- Nivel estimado: %s\n", eval.Level)
	fmt.Fprintf(&b, "- Tipo de dificultad: %s\n", eval.Difficulty)
	if eval.Recommendation != "" {
		fmt.Fprintf(&b, "- Recomendación pedagógica: %s\n", eval.Recommendation)
	}

	if len(results) == 0 {
		b.WriteString(`
NO HAY RECURSOS DISPONIBLES para esta consulta.
Responde desde tu conocimiento general, al nivel estimado del estudiante.
No inventes citas ni referencias a materiales que no existen.
`)
	} else {
		b.WriteString("\nRECURSOS DISPONIBLES:\n")
		for i, r := range results {
			body := truncateRunes(r.Item.Body, maxSourceChars)
			fmt.Fprintf(&b, "\n[Recurso %d: %s (%s)]\n%s\n[Fin recurso %d]\n",
				i+1, r.Item.Title, r.Item.Level, body, i+1)
		}
	}

	b.WriteString(`
INSTRUCCIONES:
1. Adapta el tono y la profundidad al nivel estimado.
2. Usa los recursos disponibles para enriquecer tu respuesta.
3. Incluye ejemplos prácticos cuando sea apropiado.
4. Sugiere pasos siguientes para el aprendizaje.
5. Mantén un tono amigable y motivador.

Genera una respuesta educativa completa y personalizada:
`)
	return b.String()
}

// truncateRunes caps s at max runes, appending an ellipsis when cut.
// Rune-based so Spanish text is never split mid-character. max <= 0
// disables truncation.
func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
