package tutor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"go.uber.org/goleak"

	"github.com/atenea-ai/atenea/internal/content"
	"github.com/atenea-ai/atenea/internal/index"
	"github.com/atenea-ai/atenea/internal/llm"
	"github.com/atenea-ai/atenea/internal/log"
	"github.com/atenea-ai/atenea/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// memRecorder is an in-memory ProfileRecorder for tests.
type memRecorder struct {
	mu      sync.Mutex
	records []Evaluation
	err     error
}

func (r *memRecorder) RecordEvaluation(_ context.Context, _ Query, eval Evaluation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.records = append(r.records, eval)
	return nil
}

func (r *memRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// newTestPipeline wires the three real stages over the given mocks.
func newTestPipeline(t *testing.T, gen *testutil.MockGenerator, emb *testutil.MockEmbedder, idx index.Index, rec ProfileRecorder) *Orchestrator {
	t.Helper()

	retriever, err := NewIndexRetriever(RetrieverConfig{
		Embedder: emb,
		Index:    idx,
		Logger:   log.NewNop(),
	})
	if err != nil {
		t.Fatal(err)
	}
	orch, err := NewOrchestrator(OrchestratorConfig{
		Evaluator:   NewLLMEvaluator(gen, nil, log.NewNop()),
		Retriever:   retriever,
		Coordinator: NewLLMCoordinator(gen, 0, log.NewNop()),
		Recorder:    rec,
		Logger:      log.NewNop(),
	})
	if err != nil {
		t.Fatal(err)
	}
	return orch
}

func TestProcessAnswersBasicQuery(t *testing.T) {
	emb := testutil.NewMockEmbedder(retrieverTestDim)
	emb.SetVector("¿Qué es un vector?", toward(1))
	emb.SetVector("magnitud y dirección", toward(0.95))
	emb.SetVector("filas y columnas", toward(0.2))

	idx := seedIndex(t, emb,
		corpusItem("algebra_lineal:introduccion-vectores", content.LevelBasic,
			"Un vector tiene magnitud y dirección."),
		corpusItem("algebra_lineal:operaciones-matrices", content.LevelBasic,
			"Multiplicar matrices combina filas y columnas."),
	)

	gen := testutil.NewMockGenerator("")
	gen.AddResponse("Agente Evaluador",
		`{"level": "basic", "difficulty": "conceptual", "recommendation": "usar dibujos"}`)
	gen.AddResponse("Tutor Académico",
		"Un vector es una flecha: tiene magnitud y dirección.")

	rec := &memRecorder{}
	orch := newTestPipeline(t, gen, emb, idx, rec)

	state, err := orch.Process(context.Background(),
		NewQuery("¿Qué es un vector?", "algebra_lineal", "est-1"))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if state.Status != StatusAnswered {
		t.Fatalf("status = %q, want answered", state.Status)
	}
	if state.Evaluation == nil || state.Evaluation.Level != content.LevelBasic {
		t.Errorf("evaluation = %+v, want basic level", state.Evaluation)
	}
	if len(state.Results) == 0 {
		t.Fatal("no retrieved results on a populated corpus")
	}
	if state.Results[0].Item.ID != "algebra_lineal:introduccion-vectores" {
		t.Errorf("top result = %q, want the vector item ranked first", state.Results[0].Item.ID)
	}
	if state.Degraded() {
		t.Error("degraded reported with retrieved sources")
	}
	if state.Answer == "" {
		t.Error("empty answer")
	}
	if rec.count() != 1 {
		t.Errorf("recorded evaluations = %d, want 1", rec.count())
	}
}

func TestProcessDegradedModeOnUnknownSubject(t *testing.T) {
	emb := testutil.NewMockEmbedder(retrieverTestDim)
	idx := seedIndex(t, emb) // empty corpus for this subject

	gen := testutil.NewMockGenerator("")
	gen.AddResponse("Agente Evaluador",
		`{"level": "intermediate", "difficulty": "conceptual", "recommendation": ""}`)
	gen.AddResponse("Tutor Académico", "Desde conocimiento general: la entropía mide el desorden.")

	orch := newTestPipeline(t, gen, emb, idx, nil)

	state, err := orch.Process(context.Background(),
		NewQuery("¿Qué es la entropía?", "fisica", ""))
	if err != nil {
		t.Fatalf("Process() error = %v, empty retrieval must not fail the pipeline", err)
	}

	if state.Status != StatusAnswered {
		t.Fatalf("status = %q, want answered", state.Status)
	}
	if !state.Degraded() {
		t.Error("state not reported degraded with zero results")
	}
	if state.Answer == "" {
		t.Error("degraded mode produced an empty answer")
	}
}

func TestProcessSurvivesEvaluatorTimeouts(t *testing.T) {
	emb := testutil.NewMockEmbedder(retrieverTestDim)
	emb.SetVector("¿Qué es un límite?", toward(1))
	emb.SetVector("valor al que se acerca", toward(0.9))

	idx := seedIndex(t, emb,
		corpusItem("calculo:limites", content.LevelBasic,
			"Un límite es el valor al que se acerca una función."),
	)

	gen := testutil.NewMockGenerator("Explicación adaptada del concepto de límite.")
	// Both evaluator attempts time out; the coordinator call succeeds.
	gen.FailNext(llm.ErrGenerationTimeout, llm.ErrGenerationTimeout)

	orch := newTestPipeline(t, gen, emb, idx, nil)

	state, err := orch.Process(context.Background(),
		NewQuery("¿Qué es un límite?", "calculo", ""))
	if err != nil {
		t.Fatalf("Process() error = %v, heuristic fallback must keep the pipeline alive", err)
	}

	if state.Status != StatusAnswered {
		t.Fatalf("status = %q, want answered", state.Status)
	}
	// "qué es" cue drives the heuristic to basic.
	if state.Evaluation.Level != content.LevelBasic {
		t.Errorf("heuristic level = %q, want basic", state.Evaluation.Level)
	}
	if state.Answer == "" {
		t.Error("empty answer")
	}
}

func TestProcessFailsOnSynthesisFailure(t *testing.T) {
	emb := testutil.NewMockEmbedder(retrieverTestDim)
	idx := seedIndex(t, emb)

	gen := testutil.NewMockGenerator("")
	gen.AddResponse("Agente Evaluador",
		`{"level": "basic", "difficulty": "conceptual", "recommendation": ""}`)
	orch := newTestPipeline(t, gen, emb, idx, nil)

	// Blank synthesis output is rejected as unavailable generation.
	gen.AddResponse("Tutor Académico", "")

	state, err := orch.Process(context.Background(),
		NewQuery("consulta", "quimica", ""))
	if err == nil {
		t.Fatal("Process() error = nil, want synthesis failure")
	}

	var perr *PipelineError
	if !errors.As(err, &perr) {
		t.Fatalf("error type = %T, want *PipelineError", err)
	}
	if perr.Stage != StageCoordinator {
		t.Errorf("failed stage = %q, want coordinator", perr.Stage)
	}
	if !errors.Is(err, llm.ErrGenerationUnavailable) {
		t.Errorf("cause = %v, want ErrGenerationUnavailable", err)
	}

	if state.Status != StatusFailed {
		t.Errorf("status = %q, want failed", state.Status)
	}
	if state.Err == nil || state.Err.Category() != "generation unavailable" {
		t.Errorf("failure descriptor = %+v", state.Err)
	}
	// Evaluation and results survive on the failed state for inspection.
	if state.Evaluation == nil {
		t.Error("evaluation lost on failure")
	}
}

func TestProcessRecorderFailureIsNonFatal(t *testing.T) {
	emb := testutil.NewMockEmbedder(retrieverTestDim)
	idx := seedIndex(t, emb)

	gen := testutil.NewMockGenerator("respuesta")
	gen.AddResponse("Agente Evaluador",
		`{"level": "basic", "difficulty": "conceptual", "recommendation": ""}`)

	rec := &memRecorder{err: errors.New("history store down")}
	orch := newTestPipeline(t, gen, emb, idx, rec)

	state, err := orch.Process(context.Background(),
		NewQuery("¿Qué es un vector?", "algebra_lineal", "est-1"))
	if err != nil {
		t.Fatalf("Process() error = %v, recorder failures must be swallowed", err)
	}
	if state.Status != StatusAnswered {
		t.Errorf("status = %q, want answered", state.Status)
	}
}

func TestProcessPropagatesCancellation(t *testing.T) {
	emb := testutil.NewMockEmbedder(retrieverTestDim)
	idx := seedIndex(t, emb)
	gen := testutil.NewMockGenerator("x")
	orch := newTestPipeline(t, gen, emb, idx, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	state, err := orch.Process(ctx, NewQuery("consulta", "", ""))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Process() error = %v, want context.Canceled", err)
	}
	if state.Status != StatusFailed {
		t.Errorf("status = %q, want failed", state.Status)
	}
	if state.Err == nil || state.Err.Stage != StageEvaluator {
		t.Errorf("failure descriptor = %+v, want evaluator stage", state.Err)
	}
	if state.Err != nil && state.Err.Category() != "canceled" {
		t.Errorf("category = %q, want canceled", state.Err.Category())
	}
}

func TestProcessConcurrentQueries(t *testing.T) {
	emb := testutil.NewMockEmbedder(retrieverTestDim)
	idx := seedIndex(t, emb,
		corpusItem("calculo:derivadas", content.LevelIntermediate,
			"La derivada mide la tasa de cambio instantánea."),
		corpusItem("calculo:limites", content.LevelIntermediate,
			"Un límite describe el comportamiento cerca de un punto."),
	)

	gen := testutil.NewMockGenerator("respuesta educativa")
	gen.AddResponse("Agente Evaluador",
		`{"level": "intermediate", "difficulty": "conceptual", "recommendation": ""}`)

	orch := newTestPipeline(t, gen, emb, idx, &memRecorder{})

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			state, err := orch.Process(context.Background(),
				NewQuery("diferencia entre límites y derivadas", "calculo", "est-1"))
			if err != nil {
				errs <- err
				return
			}
			if state.Status != StatusAnswered {
				errs <- errors.New("status " + string(state.Status))
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent Process() error = %v", err)
	}
}

func TestDemoQueriesAreWellFormed(t *testing.T) {
	queries := DemoQueries()
	if len(queries) != 3 {
		t.Fatalf("got %d demo queries, want 3", len(queries))
	}
	for _, q := range queries {
		if strings.TrimSpace(q.Text) == "" || q.Subject == "" {
			t.Errorf("malformed demo query: %+v", q)
		}
	}
}
