package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAskPrintsFragmentsInOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/buscar/", r.URL.Path)
		assert.Equal(t, "¿Cómo reinicio?", r.URL.Query().Get("pregunta"))
		fmt.Fprintln(w, `{"respuesta":"Mantenga "}`)
		fmt.Fprintln(w, `no-json`)
		fmt.Fprintln(w, `{"respuesta":"pulsado."}`)
	}))
	defer srv.Close()

	var out bytes.Buffer
	require.NoError(t, ask(&out, srv.URL+"/", "¿Cómo reinicio?"))

	assert.Equal(t, "Mantenga pulsado.\n", out.String())
}

func TestAskReportsHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"message":"La pregunta es requerida."}`)
	}))
	defer srv.Close()

	err := ask(&bytes.Buffer{}, srv.URL, "x")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "La pregunta es requerida.")
}
