package dto

type SearchRequest struct {
	Pregunta string `query:"pregunta" validate:"required" message:"La pregunta es requerida."`
}

// SearchFragment is one NDJSON line of GET /buscar/.
type SearchFragment struct {
	Respuesta string `json:"respuesta"`
}

type AnswerResponse struct {
	Respuesta string   `json:"respuesta"`
	Fuentes   []Source `json:"fuentes"`
	Duracion  string   `json:"duracion"`
}

type Source struct {
	Id       string  `json:"id"`
	Filename string  `json:"filename"`
	Titulo   string  `json:"titulo"`
	Distance float64 `json:"distance"`
}

type StatusResponse struct {
	Status  string      `json:"status"`
	Service string      `json:"service"`
	Cache   *CacheStats `json:"cache,omitempty"`
}

// CacheStats reports the query embedding cache.
type CacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Size   int   `json:"size"`
}
