package common

import (
	"fmt"
	"strings"
)

// ObjColor is the colour tag carried by manipulable objects. Switches may
// restrict activation to a set of colours.
type ObjColor int

const (
	ColorNone ObjColor = iota
	ColorRed
	ColorGreen
	ColorBlue
)

func (c ObjColor) String() string {
	switch c {
	case ColorRed:
		return "red"
	case ColorGreen:
		return "green"
	case ColorBlue:
		return "blue"
	default:
		return "none"
	}
}

func ParseObjColor(s string) (ObjColor, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return ColorNone, nil
	case "red":
		return ColorRed, nil
	case "green":
		return ColorGreen, nil
	case "blue":
		return ColorBlue, nil
	default:
		return ColorNone, fmt.Errorf("common: unknown color %q", s)
	}
}

// UnmarshalYAML lets specs write colours by name.
func (c *ObjColor) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseObjColor(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
