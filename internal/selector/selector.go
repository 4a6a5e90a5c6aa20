// Package selector holds the two inputs every render entry point branches
// on: the variable dropdown and the global/local framing radio.
package selector

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownVariable = errors.New("unknown variable")
	ErrUnknownFraming  = errors.New("unknown framing")
)

type Variable int

const (
	Temperature Variable = iota + 1
	Humidity
)

// ParseVariable accepts the dataset code (DBT, RH) or the dropdown label,
// case-insensitively. Anything else is rejected.
func ParseVariable(s string) (Variable, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dbt", "dry bulb temperature", "temperature":
		return Temperature, nil
	case "rh", "relative humidity", "humidity":
		return Humidity, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownVariable, s)
	}
}

// dataset column holding the series
func (v Variable) Code() string {
	switch v {
	case Temperature:
		return "DBT"
	case Humidity:
		return "RH"
	default:
		return ""
	}
}

// chart name prefix
func (v Variable) Prefix() string {
	switch v {
	case Temperature:
		return "tdb"
	case Humidity:
		return "rh"
	default:
		return ""
	}
}

func (v Variable) Valid() bool { return v == Temperature || v == Humidity }

func (v Variable) String() string {
	if c := v.Code(); c != "" {
		return c
	}
	return fmt.Sprintf("Variable(%d)", int(v))
}

type Framing int

const (
	Global Framing = iota + 1
	Local
)

// ParseFraming treats an empty value as Global, the radio's initial state.
func ParseFraming(s string) (Framing, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "global":
		return Global, nil
	case "local":
		return Local, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFraming, s)
	}
}

func (f Framing) Valid() bool { return f == Global || f == Local }

func (f Framing) String() string {
	switch f {
	case Global:
		return "global"
	case Local:
		return "local"
	default:
		return fmt.Sprintf("Framing(%d)", int(f))
	}
}
