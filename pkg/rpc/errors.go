package rpc

import (
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	// ErrTimeout - ответ не пришёл до дедлайна вызова.
	// Побочный эффект на стороне сервиса при этом мог произойти.
	ErrTimeout = errors.New("rpc: timeout")
	// ErrTransport - брокер недоступен или канал закрыт.
	ErrTransport = errors.New("rpc: transport failure")
	// ErrMalformed - тело запроса не разбирается. Такие сообщения не переотправляются.
	ErrMalformed = errors.New("rpc: malformed payload")
)

// RemoteError - ошибка, которую вернул обработчик на стороне сервиса.
// Реализует GRPCStatus, поэтому status.Code(err) даёт исходный код.
type RemoteError struct {
	Code    codes.Code
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("rpc: remote error: code = %s desc = %s", e.Code, e.Message)
}

// GRPCStatus позволяет status.FromError распознавать удалённую ошибку.
func (e *RemoteError) GRPCStatus() *status.Status {
	return status.New(e.Code, e.Message)
}

// Errorf создаёт ошибку обработчика, которая уйдёт вызывающему в конверте ответа.
func Errorf(code codes.Code, format string, args ...any) error {
	return &RemoteError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Malformed оборачивает ошибку разбора в ErrMalformed.
func Malformed(err error) error {
	return fmt.Errorf("%w: %v", ErrMalformed, err)
}

// errorBody - тело ошибки в конверте ответа: {"error":{"code":5,"message":"..."}}.
type errorBody struct {
	Code    codes.Code `json:"code"`
	Message string     `json:"message"`
}

type envelope struct {
	Error *errorBody `json:"error,omitempty"`
}

func encodeError(e *RemoteError) []byte {
	b, _ := json.Marshal(envelope{Error: &errorBody{Code: e.Code, Message: e.Message}})
	return b
}

// decodeReply разбирает ответ: конверт ошибки превращается в *RemoteError,
// иначе тело декодируется в out (если out != nil).
func decodeReply(body []byte, out any) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error != nil {
		return &RemoteError{Code: env.Error.Code, Message: env.Error.Message}
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode reply: %w", err)
	}

	return nil
}
