package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTemplate(t *testing.T) {
	out := NewBuilder("").Build("¿Cómo reinicio?", "Mantenga pulsado el botón.")

	assert.True(t, strings.HasPrefix(out, "[INST] \nEres un asistente técnico experto"))
	assert.Contains(t, out, `responde exactamente: "No se encontró información en los manuales."`)
	assert.Contains(t, out, "### Contexto:\nMantenga pulsado el botón.\n\n### Pregunta:\n¿Cómo reinicio?\n\n### Respuesta:\n[/INST]")
}

func TestBuildDoesNotExpandPlaceholdersInInput(t *testing.T) {
	out := NewBuilder("C={context} Q={query}").Build("{context}", "x")

	assert.Equal(t, "C=x Q={context}", out)
}

func TestLoadBuilder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt.txt")
	require.NoError(t, os.WriteFile(path, []byte("{query} :: {context}"), 0o644))

	b, err := LoadBuilder(path)
	require.NoError(t, err)
	assert.Equal(t, "q :: c", b.Build("q", "c"))

	bad := filepath.Join(t.TempDir(), "bad.txt")
	require.NoError(t, os.WriteFile(bad, []byte("sin marcadores"), 0o644))
	_, err = LoadBuilder(bad)
	assert.Error(t, err)

	def, err := LoadBuilder("")
	require.NoError(t, err)
	assert.Equal(t, DefaultTemplate, def.template)
}
