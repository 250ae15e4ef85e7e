package app

import (
	"errors"

	"github.com/xavion03/openings-tierlist/internal/ports"
)

var (
	ErrNotFound = ports.ErrNotFound
	ErrConflict = ports.ErrConflict
)

// Codes d'erreur stables exposés à l'API et aux logs.
const (
	CodeNetworkError      = "network_error"       // transport, réessayable plus tard
	CodeAuthError         = "auth_error"          // refresh token mort, ré-autorisation humaine requise
	CodeRemoteClientError = "remote_client_error" // 4xx non-auth, skip de l'item
	CodeRemoteServerError = "remote_server_error" // 5xx, transitoire, jamais confondu avec auth
	CodeCacheCorrupt      = "cache_corrupt"       // cache local illisible, reconstruit à vide
	CodeConflict          = "conflict"            // titre déjà noté
	CodeIOError           = "io_error"            // écriture disque, stoppe l'opération bulk
	CodeInvalidParams     = "invalid_params"
)

// CodedError attache un code stable à une erreur pour la remontée API/logs.
type CodedError struct {
	Code    string
	Message string
	Err     error
}

func (e *CodedError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *CodedError) Unwrap() error { return e.Err }

func coded(code, message string, err error) *CodedError {
	return &CodedError{Code: code, Message: message, Err: err}
}

// ErrorCode extracts the stable code, defaulting to internal.
func ErrorCode(err error) string {
	var ce *CodedError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return "internal"
}
