package dto

type LogListRequest struct {
	Level  string `query:"level" validate:"omitempty,oneof=debug info warn error"`
	Limit  int    `query:"limit" validate:"min=0,max=1000"`
	Offset int    `query:"offset" validate:"min=0"`
}

type LogListResponse struct {
	Id        string                 `json:"id"` // sha1 of the raw line
	Level     string                 `json:"level"`
	Module    string                 `json:"module"`
	Message   string                 `json:"message"`
	Timestamp string                 `json:"timestamp"`
	Details   map[string]interface{} `json:"details,omitempty"`
}
