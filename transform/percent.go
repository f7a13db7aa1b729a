package transform

import (
	"encoding/json"
	"math"
	"strconv"
)

// Percent is a percentage that may be undefined, as when the reference
// value it is relative to is zero.
type Percent struct {
	Value   float64
	Defined bool
}

// Undefined is the Percent with no value.
var Undefined = Percent{}

// PercentOf returns (value - ref) / ref * 100, or Undefined when ref is zero.
func PercentOf(value, ref int64) Percent {
	if ref == 0 {
		return Undefined
	}
	return Percent{
		Value:   float64(value-ref) / float64(ref) * 100,
		Defined: true,
	}
}

// Float returns the value, or NaN when undefined.
func (p Percent) Float() float64 {
	if !p.Defined {
		return math.NaN()
	}
	return p.Value
}

// Rounded returns the value rounded to the nearest whole percent, or zero
// when undefined.
func (p Percent) Rounded() int64 {
	if !p.Defined {
		return 0
	}
	return int64(math.Round(p.Value))
}

func (p Percent) String() string {
	if !p.Defined {
		return "n/a"
	}
	return strconv.FormatFloat(p.Value, 'f', 1, 64) + "%"
}

// MarshalJSON encodes an undefined percent as null.
func (p Percent) MarshalJSON() ([]byte, error) {
	if !p.Defined {
		return []byte("null"), nil
	}
	return json.Marshal(p.Value)
}

// MarshalYAML encodes an undefined percent as null.
func (p Percent) MarshalYAML() (interface{}, error) {
	if !p.Defined {
		return nil, nil
	}
	return p.Value, nil
}
