package tutor

import (
	"context"
	"errors"
	"testing"

	"github.com/atenea-ai/atenea/internal/content"
	"github.com/atenea-ai/atenea/internal/llm"
	"github.com/atenea-ai/atenea/internal/log"
	"github.com/atenea-ai/atenea/internal/testutil"
)

// staticProfiles is a ProfileSource returning a fixed level.
type staticProfiles struct {
	level content.Level
	err   error
}

func (p staticProfiles) DominantLevel(ctx context.Context, studentID string) (content.Level, error) {
	return p.level, p.err
}

func TestEvaluateParsesStructuredOutput(t *testing.T) {
	gen := testutil.NewMockGenerator("")
	gen.AddResponse("Agente Evaluador",
		`Claro, aquí está la clasificación:
{"level": "basic", "difficulty": "conceptual", "recommendation": "usar ejemplos geométricos"}
Espero que ayude.`)
	ev := NewLLMEvaluator(gen, nil, log.NewNop())

	eval, err := ev.Evaluate(context.Background(), NewQuery("¿Qué es un vector?", "algebra_lineal", ""))
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if eval.Level != content.LevelBasic {
		t.Errorf("level = %q, want basic", eval.Level)
	}
	if eval.Difficulty != DifficultyConceptual {
		t.Errorf("difficulty = %q, want conceptual", eval.Difficulty)
	}
	if eval.Recommendation != "usar ejemplos geométricos" {
		t.Errorf("recommendation = %q", eval.Recommendation)
	}
	if gen.CallCount() != 1 {
		t.Errorf("generation calls = %d, want 1", gen.CallCount())
	}
}

func TestEvaluateRetriesWithStrictPrompt(t *testing.T) {
	gen := testutil.NewMockGenerator("no soy JSON")
	// First prompt yields prose; the strict retry yields valid JSON.
	gen.AddResponse("Clasifica la siguiente",
		`{"level": "advanced", "difficulty": "procedural", "recommendation": ""}`)
	ev := NewLLMEvaluator(gen, nil, log.NewNop())

	eval, err := ev.Evaluate(context.Background(), NewQuery("Demuestra el teorema", "algebra_lineal", ""))
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if eval.Level != content.LevelAdvanced {
		t.Errorf("level = %q, want advanced", eval.Level)
	}
	if gen.CallCount() != 2 {
		t.Errorf("generation calls = %d, want 2 (initial + strict retry)", gen.CallCount())
	}
}

func TestEvaluateFallsBackToHeuristic(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantLevel content.Level
		wantDiff  Difficulty
	}{
		{"basic cue", "¿Qué es una matriz?", content.LevelBasic, DifficultyConceptual},
		{"advanced cue", "Demuestra el teorema de la dimensión", content.LevelAdvanced, DifficultyConceptual},
		{"procedural cue", "explícame paso a paso la eliminación gaussiana", content.LevelIntermediate, DifficultyProcedural},
		{"no cue defaults intermediate", "matrices y sus usos", content.LevelIntermediate, DifficultyConceptual},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := testutil.NewMockGenerator("")
			gen.FailNext(llm.ErrGenerationTimeout, llm.ErrGenerationTimeout)
			ev := NewLLMEvaluator(gen, nil, log.NewNop())

			eval, err := ev.Evaluate(context.Background(), NewQuery(tt.query, "algebra_lineal", ""))
			if err != nil {
				t.Fatalf("Evaluate() error = %v, heuristic path must not fail", err)
			}
			if eval.Level != tt.wantLevel {
				t.Errorf("level = %q, want %q", eval.Level, tt.wantLevel)
			}
			if eval.Difficulty != tt.wantDiff {
				t.Errorf("difficulty = %q, want %q", eval.Difficulty, tt.wantDiff)
			}
			if gen.CallCount() != 2 {
				t.Errorf("generation calls = %d, want exactly 2", gen.CallCount())
			}
		})
	}
}

func TestEvaluateHeuristicUsesHistoryBias(t *testing.T) {
	gen := testutil.NewMockGenerator("salida rota")
	profiles := staticProfiles{level: content.LevelAdvanced}
	ev := NewLLMEvaluator(gen, profiles, log.NewNop())

	// No keyword cue in the text, so the history hint decides the level.
	eval, err := ev.Evaluate(context.Background(), NewQuery("series de Taylor en varias variables", "calculo", "al-1"))
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if eval.Level != content.LevelAdvanced {
		t.Errorf("level = %q, want advanced from history bias", eval.Level)
	}

	// A matched cue beats the hint.
	eval, err = ev.Evaluate(context.Background(), NewQuery("¿Qué es un límite?", "calculo", "al-1"))
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if eval.Level != content.LevelBasic {
		t.Errorf("level = %q, cue must override history bias", eval.Level)
	}
}

func TestEvaluateProfileLookupFailureIsIgnored(t *testing.T) {
	gen := testutil.NewMockGenerator("salida rota")
	profiles := staticProfiles{err: errors.New("history down")}
	ev := NewLLMEvaluator(gen, profiles, log.NewNop())

	eval, err := ev.Evaluate(context.Background(), NewQuery("matrices y sus usos", "algebra_lineal", "al-1"))
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if eval.Level != content.LevelIntermediate {
		t.Errorf("level = %q, want default intermediate", eval.Level)
	}
}

func TestEvaluatePropagatesCancellation(t *testing.T) {
	gen := testutil.NewMockGenerator("")
	ev := NewLLMEvaluator(gen, nil, log.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ev.Evaluate(ctx, NewQuery("¿Qué es un vector?", "", ""))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Evaluate() error = %v, want context.Canceled", err)
	}
}

func TestParseEvaluation(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{"bare json", `{"level":"basic","difficulty":"conceptual","recommendation":"r"}`, false},
		{"fenced json", "```json\n{\"level\":\"intermediate\",\"difficulty\":\"applied\",\"recommendation\":\"\"}\n```", false},
		{"spanish level value", `{"level":"básico","difficulty":"conceptual","recommendation":""}`, false},
		{"no json", "la consulta es de nivel básico", true},
		{"invalid level", `{"level":"expert","difficulty":"conceptual","recommendation":""}`, true},
		{"invalid difficulty", `{"level":"basic","difficulty":"hard","recommendation":""}`, true},
		{"malformed json", `{"level": "basic",`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eval, err := parseEvaluation(tt.text)
			if tt.wantErr {
				if !errors.Is(err, ErrClassificationParse) {
					t.Errorf("parseEvaluation() error = %v, want ErrClassificationParse", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseEvaluation() error = %v", err)
			}
			if !eval.Level.Valid() || !eval.Difficulty.Valid() {
				t.Errorf("out-of-enumeration result: %+v", eval)
			}
		})
	}
}
