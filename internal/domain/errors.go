package domain

import "errors"

// ошибки удаленных вызовов, оборачивают причину через %w
var (
	ErrSearchFailed     = errors.New("search failed")
	ErrCompletionFailed = errors.New("completion failed")
)

var (
	ErrEmptyTopic   = errors.New("empty topic")
	ErrTopicTooLong = errors.New("topic too long")
	ErrInvalidMode  = errors.New("invalid research mode")
)
