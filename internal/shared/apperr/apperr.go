package apperr

import (
	"errors"
	"fmt"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Kind phân loại lỗi theo cách caller cần xử lý
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindDenied
	KindNotFound
	KindConflict
	KindTooManyRequests
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindDenied:
		return "denied"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindTooManyRequests:
		return "too_many_requests"
	default:
		return "internal"
	}
}

// Error là base error cho mọi domain
type Error struct {
	Kind    Kind
	Code    string            // Error code duy nhất (VD: "PUBLICATION_NOT_FOUND")
	Message string            // Human-readable message
	Details map[string]string // Field-level details (chỉ dùng cho validation)
	Err     error             // Underlying error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is so sánh theo Code để errors.Is hoạt động với sentinel errors
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Wrap trả về bản copy gắn thêm underlying error
func (e *Error) Wrap(err error) *Error {
	cp := *e
	cp.Err = err
	return &cp
}

// WithDetail trả về bản copy gắn thêm một field detail
func (e *Error) WithDetail(field, message string) *Error {
	cp := *e
	cp.Details = make(map[string]string, len(e.Details)+1)
	for k, v := range e.Details {
		cp.Details[k] = v
	}
	cp.Details[field] = message
	return &cp
}

// ============================================
// FACTORY FUNCTIONS
// ============================================

func Validation(code, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message}
}

// FieldInvalid tạo validation error cho đúng một field
func FieldInvalid(field, message string) *Error {
	return &Error{
		Kind:    KindValidation,
		Code:    "VALIDATION_ERROR",
		Message: "Validation error",
		Details: map[string]string{field: message},
	}
}

func Unauthenticated(code, message string) *Error {
	return &Error{Kind: KindUnauthenticated, Code: code, Message: message}
}

func Denied(code, message string) *Error {
	return &Error{Kind: KindDenied, Code: code, Message: message}
}

func NotFound(code, message string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: message}
}

func Conflict(code, message string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: message}
}

func TooManyRequests(code, message string) *Error {
	return &Error{Kind: KindTooManyRequests, Code: code, Message: message}
}

func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Code: "INTERNAL_ERROR", Message: message, Err: err}
}

// FromValidation chuyển lỗi ozzo-validation thành Validation error có field details.
// Lỗi không phải validation.Errors được trả về nguyên vẹn.
func FromValidation(err error) error {
	if err == nil {
		return nil
	}

	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		var internal validation.InternalError
		if errors.As(err, &internal) {
			return Internal("validation failed", err)
		}
		return err
	}

	details := make(map[string]string, len(verrs))
	for field, fieldErr := range verrs {
		if fieldErr == nil {
			continue
		}
		details[field] = fieldErr.Error()
	}

	return &Error{
		Kind:    KindValidation,
		Code:    "VALIDATION_ERROR",
		Message: "Validation error",
		Details: details,
		Err:     err,
	}
}

// ============================================
// HELPERS
// ============================================

// KindOf trả về Kind của err, KindInternal nếu không phải *Error
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus map Kind sang HTTP status code
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindDenied:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
