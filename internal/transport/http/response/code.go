package response

import "sick-fits/internal/domain"

// Envelope codes follow HTTP status semantics.
const (
	CodeOK              = 0
	CodeBadRequest      = 400
	CodeUnauthorized    = 401
	CodeForbidden       = 403
	CodeNotFound        = 404
	CodeTooManyRequests = 429
	CodeServerError     = 500
	CodeTimeout         = 504
)

var CodeMsgMap = map[int]string{
	CodeOK:              "OK",
	CodeBadRequest:      "Bad Request",
	CodeUnauthorized:    "Unauthorized",
	CodeForbidden:       "Forbidden",
	CodeNotFound:        "Not Found",
	CodeTooManyRequests: "Too Many Requests",
	CodeServerError:     "Internal Server Error",
	CodeTimeout:         "Timeout",
}

// CodeForKind maps a domain error kind onto an envelope code.
func CodeForKind(k domain.Kind) int {
	switch k {
	case domain.KindAuthRequired, domain.KindInvalidCredentials:
		return CodeUnauthorized
	case domain.KindForbidden:
		return CodeForbidden
	case domain.KindNotFound:
		return CodeNotFound
	case domain.KindValidation, domain.KindInvalidOrExpired:
		return CodeBadRequest
	default:
		return CodeServerError
	}
}
