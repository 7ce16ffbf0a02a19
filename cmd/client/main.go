// Command client asks questions to a running server and prints the streamed answer.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/SantanaPablo/Manuales-IA/internal/dto"

	"github.com/fatih/color"
)

var exitWords = map[string]bool{"salir": true, "exit": true, "quit": true}

func main() {
	server := flag.String("server", envOr("SERVER_URL", "http://127.0.0.1:8000"), "base URL of the search service")
	flag.Parse()

	prompt := color.New(color.FgCyan, color.Bold)
	in := bufio.NewScanner(os.Stdin)

	for {
		prompt.Print("\nPregunta (o 'salir'): ")
		if !in.Scan() {
			return
		}
		question := strings.TrimSpace(in.Text())
		if question == "" {
			continue
		}
		if exitWords[strings.ToLower(question)] {
			return
		}

		if err := ask(os.Stdout, *server, question); err != nil {
			color.Red("Error: %v", err)
		}
	}
}

// ask prints each fragment as it arrives.
func ask(out io.Writer, server, question string) error {
	resp, err := http.Get(strings.TrimRight(server, "/") + "/buscar/?pregunta=" + url.QueryEscape(question))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	lines := bufio.NewScanner(resp.Body)
	lines.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for lines.Scan() {
		var frag dto.SearchFragment
		if err := json.Unmarshal(lines.Bytes(), &frag); err != nil {
			continue
		}
		fmt.Fprint(out, frag.Respuesta)
	}
	fmt.Fprintln(out)
	return lines.Err()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
