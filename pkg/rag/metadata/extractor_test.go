package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractExplicitMarkers(t *testing.T) {
	block := "[TITULO=Instalación del router]\n[información=Conecte el cable.\nEncienda el equipo.]\n[etiquetas=red, router]"

	title, body, tags := Extract(block)

	assert.Equal(t, "Instalación del router", title)
	assert.Equal(t, "Conecte el cable.\nEncienda el equipo.", body)
	assert.Equal(t, []string{"red", "router"}, tags)
}

func TestExtractFallbackHeading(t *testing.T) {
	block := "INSTALACIÓN\nConfigurar router router router. Configurar equipo."

	title, body, tags := Extract(block)

	assert.Equal(t, "INSTALACIÓN", title)
	assert.Equal(t, block, body)
	assert.Equal(t, []string{"router", "Configurar", "equipo"}, tags)
}

func TestExtractFallbackKeepsExplicitTitle(t *testing.T) {
	title, body, tags := Extract("[titulo=Red]\nsin marcador de cuerpo")

	assert.Equal(t, "Red", title)
	assert.Equal(t, "[titulo=Red]\nsin marcador de cuerpo", body)
	assert.Equal(t, []string{"titulo", "marcador", "cuerpo"}, tags)
}

func TestExtractEmptyBlock(t *testing.T) {
	title, body, tags := Extract("")

	assert.Equal(t, DefaultTitle, title)
	assert.Equal(t, "", body)
	assert.Empty(t, tags)
}

func TestExtractLongUppercaseLineIsNotTitle(t *testing.T) {
	block := "ESTA LINEA EN MAYUSCULAS ES DEMASIADO LARGA PARA SER UN TITULO\notra linea"

	title, _, _ := Extract(block)

	assert.Equal(t, DefaultTitle, title)
}

func TestTopWordsTiesAndCase(t *testing.T) {
	words := TopWords("Bomba bomba Bomba válvula válvula filtro motor sello junta a1b2c", 5)

	assert.Equal(t, []string{"Bomba", "válvula", "bomba", "filtro", "motor"}, words)
}

func TestTopWordsSkipsMixedRuns(t *testing.T) {
	assert.Equal(t, []string{"cable"}, TopWords("cable modelo2000 abc_def", 5))
}
