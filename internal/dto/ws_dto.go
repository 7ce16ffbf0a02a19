package dto

const (
	WsTypeFragment = "fragmento"
	WsTypeDone     = "fin"
	WsTypeError    = "error"
	WsTypeIngest   = "ingesta"
)

// WsQuestion is what a client sends over /ws/buscar.
type WsQuestion struct {
	Pregunta string `json:"pregunta"`
}

type WsMessage struct {
	Tipo      string             `json:"tipo"`
	Respuesta string             `json:"respuesta,omitempty"`
	Error     string             `json:"error,omitempty"`
	Job       *IngestJobResponse `json:"job,omitempty"`
}
