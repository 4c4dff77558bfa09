package apperrors

import (
	"errors"
)

var (
	ErrShutdown = errors.New("shutdown error")

	ErrUserNotFound    = errors.New("user does not exist")
	ErrProjectNotFound = errors.New("project does not exist")
	ErrTodoNotFound    = errors.New("todo does not exist")

	ErrNotProjectMember = errors.New("user is not a member of the project")
	ErrEmptyText        = errors.New("text must not be empty")

	ErrNotificationNotFound = errors.New("notification does not exist")

	ErrContextValueDoesNotExist = errors.New("context value does not exist")
	ErrContextValueInvalidType  = errors.New("invalid context value type")
)
