package http

import (
	"encoding/json"
	"net/http"
)

// statusBlock is the uniform status portion of every response envelope.
type statusBlock struct {
	Code    int    `json:"code"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type envelope struct {
	Data   any         `json:"data"`
	Status statusBlock `json:"status"`
}

// writeJSON wraps data in the response envelope.
func writeJSON(w http.ResponseWriter, code int, data any, message string) {
	status := "Success"
	if code >= 400 {
		status = "Error"
	}
	if data == nil {
		data = struct{}{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	payload, err := json.Marshal(envelope{
		Data:   data,
		Status: statusBlock{Code: code, Status: status, Message: message},
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"data":{},"status":{"code":500,"status":"Error","message":"internal error"}}`))
		return
	}
	_, _ = w.Write(payload)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, nil, message)
}
