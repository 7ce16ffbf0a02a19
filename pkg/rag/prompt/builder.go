package prompt

import (
	"fmt"
	"os"
	"strings"
)

// NotFoundAnswer is the literal the model is told to answer with when the
// context does not contain the answer.
const NotFoundAnswer = "No se encontró información en los manuales."

// DefaultTemplate must keep its wording: clients match on NotFoundAnswer.
const DefaultTemplate = `[INST] 
Eres un asistente técnico experto y solo puedes responder con información que esté en el contexto.
Si la respuesta no está explícitamente en el contexto, responde exactamente: "` + NotFoundAnswer + `" No intentes adivinar ni generar información adicional.

### Contexto:
{context}

### Pregunta:
{query}

### Respuesta:
[/INST]`

const (
	contextPlaceholder = "{context}"
	queryPlaceholder   = "{query}"
)

// Builder fills the {context} and {query} placeholders of a template.
type Builder struct {
	template string
}

func NewBuilder(template string) *Builder {
	if template == "" {
		template = DefaultTemplate
	}
	return &Builder{template: template}
}

// LoadBuilder reads a template file; an empty path selects DefaultTemplate.
func LoadBuilder(path string) (*Builder, error) {
	if path == "" {
		return NewBuilder(""), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompt template: %w", err)
	}
	tmpl := string(raw)
	if !strings.Contains(tmpl, contextPlaceholder) || !strings.Contains(tmpl, queryPlaceholder) {
		return nil, fmt.Errorf("prompt template %s must contain %s and %s", path, contextPlaceholder, queryPlaceholder)
	}
	return NewBuilder(tmpl), nil
}

// Build substitutes in a single pass, so placeholder text inside the
// context or query is left untouched.
func (b *Builder) Build(query, context string) string {
	return strings.NewReplacer(contextPlaceholder, context, queryPlaceholder, query).Replace(b.template)
}
