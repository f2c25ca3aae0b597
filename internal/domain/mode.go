package domain

import "strings"

type Mode string

const (
	ModeDepth Mode = "depth"
	ModeMulti Mode = "multi"
)

func (m Mode) IsValid() bool {
	switch m {
	case ModeDepth, ModeMulti:
		return true
	}
	return false
}

func (m Mode) String() string { return string(m) }

// Title - человекочитаемое название режима
func (m Mode) Title() string {
	switch m {
	case ModeDepth:
		return "Depth Search"
	case ModeMulti:
		return "Multi-Agent Research"
	}
	return string(m)
}

// ParseMode понимает короткие имена и синонимы ("deep", "multi-agent" и т.п.)
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "depth", "deep", "layered", "depth search":
		return ModeDepth, nil
	case "multi", "multiagent", "multi-agent", "agents", "multi-agent research":
		return ModeMulti, nil
	}
	return "", ErrInvalidMode
}
