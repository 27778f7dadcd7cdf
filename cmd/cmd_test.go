package cmd

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/atenea-ai/atenea/internal/content"
	"github.com/atenea-ai/atenea/internal/index"
	"github.com/atenea-ai/atenea/internal/llm"
	"github.com/atenea-ai/atenea/internal/tutor"
)

func answeredState(t *testing.T, results []index.RankedResult) *tutor.PipelineState {
	t.Helper()
	state := &tutor.PipelineState{
		Query:  tutor.NewQuery("¿Qué es un vector?", "algebra_lineal", ""),
		Status: tutor.StatusAnswered,
		Answer: "Un vector tiene magnitud y dirección.",
		Evaluation: &tutor.Evaluation{
			Level:          content.LevelBasic,
			Difficulty:     tutor.DifficultyConceptual,
			Recommendation: "usar ejemplos geométricos",
		},
		Results: results,
	}
	return state
}

func TestPrintAnswerWithSources(t *testing.T) {
	results := []index.RankedResult{
		{Item: content.Item{
			ID:    "algebra_lineal:introduccion-vectores",
			Title: "Introducción a los vectores",
			Level: content.LevelBasic,
		}, Score: 0.91},
	}

	var buf bytes.Buffer
	printAnswer(&buf, answeredState(t, results))
	out := buf.String()

	for _, want := range []string{
		"Un vector tiene magnitud y dirección.",
		"Nivel estimado: basic",
		"Dificultad: conceptual",
		"Enfoque: usar ejemplos geométricos",
		"Introducción a los vectores",
		"0.91",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "conocimiento general") {
		t.Error("degraded notice shown for a sourced answer")
	}
}

func TestPrintAnswerDegraded(t *testing.T) {
	var buf bytes.Buffer
	printAnswer(&buf, answeredState(t, nil))
	out := buf.String()

	if !strings.Contains(out, "conocimiento general") {
		t.Errorf("degraded notice missing:\n%s", out)
	}
	if strings.Contains(out, "Fuentes:") {
		t.Error("sources header shown without sources")
	}
}

func TestPrintFailure(t *testing.T) {
	state := &tutor.PipelineState{
		Status: tutor.StatusFailed,
		Err: &tutor.PipelineError{
			Stage: tutor.StageCoordinator,
			Cause: llm.ErrGenerationTimeout,
		},
	}

	var buf bytes.Buffer
	printFailure(&buf, state)
	out := buf.String()

	if !strings.Contains(out, "coordinator") {
		t.Errorf("stage missing from failure output:\n%s", out)
	}
	if !strings.Contains(out, "generation timeout") {
		t.Errorf("category missing from failure output:\n%s", out)
	}

	// A nil state must not panic.
	printFailure(&buf, nil)
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	versionCmd.Run(versionCmd, nil)

	if !strings.Contains(buf.String(), "Atenea") {
		t.Errorf("version output = %q", buf.String())
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
