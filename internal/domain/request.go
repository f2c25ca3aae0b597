package domain

import (
	"strings"
	"unicode/utf8"
)

const MaxTopicLength = 1000

type ResearchRequest struct {
	Topic string
	Mode  Mode
}

func (r *ResearchRequest) Validate() error {
	if strings.TrimSpace(r.Topic) == "" {
		return ErrEmptyTopic
	}

	if utf8.RuneCountInString(r.Topic) > MaxTopicLength {
		return ErrTopicTooLong
	}

	if !r.Mode.IsValid() {
		return ErrInvalidMode
	}

	return nil
}

func (r *ResearchRequest) Sanitize() {
	r.Topic = Truncate(strings.TrimSpace(r.Topic), MaxTopicLength)
}
