package service

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind 错误分类，也是响应体中 error 字段的取值.
type Kind string

const (
	KindValidation   Kind = "validation_error"
	KindUnauthorized Kind = "unauthorized"
	KindNotFound     Kind = "not_found"
	KindUpstream     Kind = "upstream_error"
	KindInvalidInput Kind = "invalid_input"
)

// HTTPStatus 返回该分类对应的 HTTP 状态码.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindInvalidInput:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// 细分错误码.
const (
	CodeMissingFields = "missing_fields"
	CodeInvalidFields = "invalid_fields"
	CodeAdminRequired = "admin_required"
	CodeBadCredential = "bad_credentials"
	CodeEbookNotFound = "ebook_not_found"
	CodeInvalidID     = "invalid_id"
	CodeUploadFailed  = "upload_failed"
	CodeRemoveFailed  = "remove_failed"
	CodeQueryFailed   = "query_failed"
	CodeWriteFailed   = "write_failed"
	CodeTooLarge      = "payload_too_large"
	CodeMalformed     = "malformed_request"
)

// Error 领域错误.
type Error struct {
	Kind    Kind
	Code    string
	Op      string
	Message string
	Fields  []string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder

	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}

	b.WriteString(string(e.Kind))

	if e.Code != "" {
		b.WriteString(" (")
		b.WriteString(e.Code)
		b.WriteString(")")
	}

	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}

	if len(e.Fields) > 0 {
		fmt.Fprintf(&b, " %v", e.Fields)
	}

	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}

	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is 同一 Kind 的错误视为相等，便于 errors.Is(err, ErrNotFound).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.Kind == e.Kind && (t.Code == "" || t.Code == e.Code)
}

var (
	ErrValidation   = &Error{Kind: KindValidation}
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrUpstream     = &Error{Kind: KindUpstream}
	ErrInvalidInput = &Error{Kind: KindInvalidInput}
)

// KindOf 返回错误的分类，非领域错误视为上游错误.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindUpstream
}

func validationError(op, code string, fields []string) *Error {
	return &Error{
		Kind:    KindValidation,
		Code:    code,
		Op:      op,
		Message: "invalid or missing fields: " + strings.Join(fields, ", "),
		Fields:  fields,
	}
}

func upstreamError(op, code string, err error) *Error {
	return &Error{Kind: KindUpstream, Code: code, Op: op, Message: "upstream failure", Err: err}
}

func notFoundError(op string, id uint) *Error {
	return &Error{Kind: KindNotFound, Code: CodeEbookNotFound, Op: op, Message: fmt.Sprintf("ebook %d not found", id)}
}

func unauthorizedError(op string) *Error {
	return &Error{Kind: KindUnauthorized, Code: CodeAdminRequired, Op: op, Message: "admin session required"}
}

// InvalidID 路径中的 ID 无法解析.
func InvalidID(raw string) *Error {
	return &Error{Kind: KindInvalidInput, Code: CodeInvalidID, Op: "parse id", Message: fmt.Sprintf("invalid ebook id %q", raw)}
}

// Unauthorized 构造未授权错误.
func Unauthorized(op, code, message string) *Error {
	return &Error{Kind: KindUnauthorized, Code: code, Op: op, Message: message}
}

// Validation 构造校验错误.
func Validation(op, code string, fields ...string) *Error {
	return validationError(op, code, fields)
}
