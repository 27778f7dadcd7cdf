package content

import (
	"errors"
	"strings"
)

// Sentinel errors for content validation.
var (
	// ErrEmptyID indicates an item without an identifier.
	ErrEmptyID = errors.New("content item id is empty")

	// ErrEmptyBody indicates an item without body text.
	ErrEmptyBody = errors.New("content item body is empty")

	// ErrInvalidLevel indicates a level outside the known tiers.
	ErrInvalidLevel = errors.New("invalid level")
)

// Level is the assessed knowledge tier a content item targets.
// It shares the value space of the evaluator's level assessment so
// retrieval can filter items by the student's assessed tier.
type Level string

// Known levels, from least to most advanced.
const (
	LevelBasic        Level = "basic"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"

	// LevelAny disables level filtering in search operations.
	LevelAny Level = ""
)

// Valid reports whether l is one of the known tiers.
func (l Level) Valid() bool {
	switch l {
	case LevelBasic, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

// ParseLevel normalizes free-form level text into a Level.
// It accepts English and Spanish spellings since both the corpus and
// model output may use either ("basico", "intermedio", "avanzado").
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "basic", "basico", "básico":
		return LevelBasic, nil
	case "intermediate", "intermedio":
		return LevelIntermediate, nil
	case "advanced", "avanzado":
		return LevelAdvanced, nil
	}
	return "", ErrInvalidLevel
}

// Type categorizes the pedagogical form of a content item.
type Type string

// Known content types, matching the corpus taxonomy.
const (
	TypeConcept   Type = "concept"   // definitions and explanations
	TypeOperation Type = "operation" // worked procedures
	TypeTheory    Type = "theory"    // formal theory and proofs
)

// Item is one educational content entry in the corpus.
// Items are immutable values; updating an item means calling Store.Put
// with the same ID and new fields.
type Item struct {
	ID      string
	Subject string
	Title   string
	Body    string
	Level   Level
	Type    Type
}

// Validate checks the invariants required before an item enters the store.
func (it Item) Validate() error {
	if strings.TrimSpace(it.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(it.Body) == "" {
		return ErrEmptyBody
	}
	if !it.Level.Valid() {
		return ErrInvalidLevel
	}
	return nil
}

// Document renders the item as a single text block for embedding,
// prefixing subject, title, level and type so the semantic search can
// match on metadata terms as well as the body.
func (it Item) Document() string {
	var b strings.Builder
	b.WriteString("Materia: ")
	b.WriteString(it.Subject)
	b.WriteString("\nTítulo: ")
	b.WriteString(it.Title)
	b.WriteString("\nNivel: ")
	b.WriteString(string(it.Level))
	b.WriteString("\nTipo: ")
	b.WriteString(string(it.Type))
	b.WriteString("\nContenido: ")
	b.WriteString(it.Body)
	return b.String()
}
