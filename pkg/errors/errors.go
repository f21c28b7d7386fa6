package errors

import "fmt"

// Error codes
const (
	CodeBotError        = "BOT_ERROR"
	CodeAPIError        = "API_ERROR"
	CodeValidation      = "VALIDATION_ERROR"
	CodeCache           = "CACHE_ERROR"
	CodeService         = "SERVICE_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeTeamFull        = "TEAM_FULL"
	CodeDuplicateMember = "DUPLICATE_MEMBER"
	CodeUnknownType     = "UNKNOWN_TYPE"
)

type BotError struct {
	Message    string
	Code       string
	StatusCode int
	Context    map[string]any
	Cause      error
}

func (e *BotError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *BotError) Unwrap() error {
	return e.Cause
}

func (e *BotError) WithCause(cause error) *BotError {
	e.Cause = cause
	return e
}

type APIError struct {
	*BotError
}

func NewAPIError(message string, statusCode int, context map[string]any) *APIError {
	return &APIError{
		BotError: &BotError{
			Message:    message,
			Code:       CodeAPIError,
			StatusCode: statusCode,
			Context:    context,
		},
	}
}

type ValidationError struct {
	*BotError
	Field string
	Value any
}

func NewValidationError(message, field string, value any) *ValidationError {
	return &ValidationError{
		BotError: &BotError{
			Message:    message,
			Code:       CodeValidation,
			StatusCode: 400,
			Context: map[string]any{
				"field": field,
				"value": value,
			},
		},
		Field: field,
		Value: value,
	}
}

type CacheError struct {
	*BotError
	Operation string
	Key       string
}

func NewCacheError(message, operation, key string, cause error) *CacheError {
	return &CacheError{
		BotError: &BotError{
			Message:    message,
			Code:       CodeCache,
			StatusCode: 500,
			Context: map[string]any{
				"operation": operation,
				"key":       key,
			},
			Cause: cause,
		},
		Operation: operation,
		Key:       key,
	}
}

type ServiceError struct {
	*BotError
	Service   string
	Operation string
}

func NewServiceError(message, service, operation string, cause error) *ServiceError {
	return &ServiceError{
		BotError: &BotError{
			Message:    message,
			Code:       CodeService,
			StatusCode: 500,
			Context: map[string]any{
				"service":   service,
				"operation": operation,
			},
			Cause: cause,
		},
		Service:   service,
		Operation: operation,
	}
}

// NotFoundError reports a lookup that the catalog answered with "no such record".
type NotFoundError struct {
	*BotError
	Resource string
	Key      string
}

func NewNotFoundError(resource, key string) *NotFoundError {
	return &NotFoundError{
		BotError: &BotError{
			Message:    fmt.Sprintf("%s not found: %s", resource, key),
			Code:       CodeNotFound,
			StatusCode: 404,
			Context: map[string]any{
				"resource": resource,
				"key":      key,
			},
		},
		Resource: resource,
		Key:      key,
	}
}

// TeamFullError is returned when a creature is added to a roster with no free slot.
type TeamFullError struct {
	*BotError
	Capacity int
}

func NewTeamFullError(capacity int) *TeamFullError {
	return &TeamFullError{
		BotError: &BotError{
			Message:    fmt.Sprintf("team already has %d members", capacity),
			Code:       CodeTeamFull,
			StatusCode: 409,
			Context: map[string]any{
				"capacity": capacity,
			},
		},
		Capacity: capacity,
	}
}

// DuplicateMemberError is returned when the roster already holds a creature with the same name.
type DuplicateMemberError struct {
	*BotError
	Name string
}

func NewDuplicateMemberError(name string) *DuplicateMemberError {
	return &DuplicateMemberError{
		BotError: &BotError{
			Message:    fmt.Sprintf("%s is already on the team", name),
			Code:       CodeDuplicateMember,
			StatusCode: 409,
			Context: map[string]any{
				"name": name,
			},
		},
		Name: name,
	}
}

// UnknownTypeError reports an elemental type string outside the known set.
type UnknownTypeError struct {
	*BotError
	Value string
}

func NewUnknownTypeError(value string) *UnknownTypeError {
	return &UnknownTypeError{
		BotError: &BotError{
			Message:    fmt.Sprintf("unknown elemental type: %q", value),
			Code:       CodeUnknownType,
			StatusCode: 422,
			Context: map[string]any{
				"value": value,
			},
		},
		Value: value,
	}
}
