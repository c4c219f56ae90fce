package model

// MessageSuccess 服务端未包装响应时补上的默认提示
const MessageSuccess = "Success"

// Envelope is what every client call returns, whatever shape the server used.
type Envelope[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// WrappedResponse is the {status, message, data, errors} body the backend uses for writes and some reads.
type WrappedResponse[T any] struct {
	Status  bool                `json:"status"`
	Message string              `json:"message,omitempty"`
	Data    T                   `json:"data"`
	Errors  map[string][]string `json:"errors,omitempty"`
}
