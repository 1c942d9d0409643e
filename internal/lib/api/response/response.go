// Package response defines the JSON envelope returned by every API handler.
package response

// Response is the envelope for all API replies.
type Response struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
	Error  string `json:"error,omitempty"`
}

const (
	statusOk    = "ok"
	statusError = "error"
)

// Ok wraps a successful payload.
func Ok(data any) Response {
	return Response{Status: statusOk, Data: data}
}

// Error wraps a failure message.
func Error(message string) Response {
	return Response{Status: statusError, Error: message}
}
