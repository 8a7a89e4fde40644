// errors приводит ошибки вызовов через очередь к HTTP-ответу gateway.
//
// Классы ошибок:
//   - *rpc.RemoteError - ответ сервиса с gRPC-кодом, маппится по таблице fromCode;
//   - rpc.ErrTimeout - ответ не пришёл вовремя, 504;
//   - rpc.ErrTransport - брокер недоступен, 503;
//   - context.Canceled - клиент ушёл, 499;
//   - ErrBadRequest - локальная ошибка разбора запроса, 400;
//   - ErrUnauthorized - в запросе нет bearer-токена, 401.
//
// Сообщения в теле фиксированные: детали удалённой ошибки наружу не уходят.
package errors

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/pribylovaa/go-food-delivery/pkg/rpc"
)

// HeaderRequestID - заголовок с идентификатором запроса.
const HeaderRequestID = "X-Request-Id"

// StatusClientClosedRequest - нестандартный код для "клиент закрыл соединение".
const StatusClientClosedRequest = 499

// ErrBadRequest - тело или параметры запроса не прошли разбор в gateway.
var ErrBadRequest = errors.New("bad request")

// ErrUnauthorized - запрос без учётных данных.
var ErrUnauthorized = errors.New("unauthorized")

// APIError - единый формат ошибки для фронта.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse - корневой объект ответа.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// ToHTTP классифицирует ошибку. nil считается ошибкой вызова и даёт 500.
func ToHTTP(err error) (int, ErrorResponse) {
	httpStatus, code, msg := classify(err)

	return httpStatus, ErrorResponse{Error: APIError{Code: code, Message: msg}}
}

func classify(err error) (int, string, string) {
	switch {
	case err == nil:
		return fromCode(codes.Internal)
	case errors.Is(err, ErrBadRequest):
		return fromCode(codes.InvalidArgument)
	case errors.Is(err, ErrUnauthorized):
		return fromCode(codes.Unauthenticated)
	case errors.Is(err, rpc.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return fromCode(codes.DeadlineExceeded)
	case errors.Is(err, rpc.ErrTransport):
		return fromCode(codes.Unavailable)
	case errors.Is(err, context.Canceled):
		return fromCode(codes.Canceled)
	}

	// RemoteError реализует GRPCStatus; status.FromError разворачивает обёртки.
	if st, ok := status.FromError(err); ok {
		return fromCode(st.Code())
	}

	return fromCode(codes.Internal)
}

// WriteError пишет статус и тело ошибки; request_id берётся из заголовка запроса.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	httpStatus, resp := ToHTTP(err)
	resp.Error.RequestID = r.Header.Get(HeaderRequestID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(resp)
}

// fromCode - таблица gRPC-код -> HTTP-статус, код и сообщение для фронта.
//   - Unauthenticated: невалидный, истёкший или отозванный токен;
//   - PermissionDenied: сессия отозвана;
//   - Aborted: refresh-токен уже ротирован;
//   - NotFound: сессия не найдена.
func fromCode(c codes.Code) (int, string, string) {
	switch c {
	case codes.InvalidArgument:
		return http.StatusBadRequest, "invalid_argument", "invalid argument"
	case codes.NotFound:
		return http.StatusNotFound, "not_found", "not found"
	case codes.AlreadyExists:
		return http.StatusConflict, "already_exists", "already exists"
	case codes.FailedPrecondition:
		return http.StatusPreconditionFailed, "failed_precondition", "failed precondition"
	case codes.Unauthenticated:
		return http.StatusUnauthorized, "unauthenticated", "unauthenticated"
	case codes.PermissionDenied:
		return http.StatusForbidden, "permission_denied", "permission denied"
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests, "resource_exhausted", "resource exhausted"
	case codes.Aborted:
		return http.StatusConflict, "aborted", "token already used"
	case codes.Canceled:
		return StatusClientClosedRequest, "canceled", "canceled"
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout, "deadline_exceeded", "upstream timeout"
	case codes.Unavailable:
		return http.StatusServiceUnavailable, "unavailable", "service unavailable"
	case codes.Unimplemented:
		return http.StatusNotImplemented, "unimplemented", "unimplemented"
	default:
		return http.StatusInternalServerError, "internal", "internal error"
	}
}
