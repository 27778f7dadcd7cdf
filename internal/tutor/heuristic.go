package tutor

import (
	"strings"

	"github.com/atenea-ai/atenea/internal/content"
)

// Deterministic keyword-based classification, used when the generation
// capability cannot produce a parseable assessment. The pipeline must
// never stall on model instability, so this path always succeeds and
// always yields in-enumeration values.

// basicCues signal a definitional or first-contact question.
var basicCues = []string{
	"qué es", "que es", "what is", "define", "definición",
	"no entiendo", "introducción", "para empezar", "significa",
}

// advancedCues signal formal or theory-heavy questions.
var advancedCues = []string{
	"demostración", "demuestra", "teorema", "axioma", "formal",
	"espacio vectorial", "distribución", "proof", "prove", "riguroso",
}

// proceduralCues signal how-to and computation questions.
var proceduralCues = []string{
	"cómo", "como se", "how to", "how do", "calcula", "calcular",
	"resuelve", "resolver", "multiplicar", "paso a paso", "procedimiento",
}

// appliedCues signal application and problem-context questions.
var appliedCues = []string{
	"aplica", "aplicación", "problema real", "ejercicio", "ejemplo real",
	"en la práctica", "caso práctico", "apply", "real-world",
}

// heuristicEvaluation classifies a query by keyword cues. The fallback
// level defaults to intermediate when no cue matches; a hint (from the
// student's history) overrides that default but never a matched cue.
func heuristicEvaluation(q Query, levelHint content.Level) Evaluation {
	text := strings.ToLower(q.Text)

	level := content.LevelIntermediate
	switch {
	case containsAny(text, basicCues):
		level = content.LevelBasic
	case containsAny(text, advancedCues):
		level = content.LevelAdvanced
	case levelHint.Valid():
		level = levelHint
	}

	difficulty := DifficultyConceptual
	switch {
	case containsAny(text, proceduralCues):
		difficulty = DifficultyProcedural
	case containsAny(text, appliedCues):
		difficulty = DifficultyApplied
	}

	return Evaluation{
		Level:          level,
		Difficulty:     difficulty,
		Recommendation: "partir de conceptos simples y usar ejemplos concretos",
	}
}

// containsAny reports whether text contains any of the cues.
func containsAny(text string, cues []string) bool {
	for _, cue := range cues {
		if strings.Contains(text, cue) {
			return true
		}
	}
	return false
}
