package pricing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// MaxCount is the largest quantity a request may carry. Larger counts are
// rejected rather than priced.
const MaxCount = 1_000_000

var errCountOutOfRange = fmt.Errorf("quantity exceeds %d", MaxCount)

// Number is a decimal input that never fails to decode. JSON numbers and
// numeric strings keep their value; null, booleans, objects, garbage and
// non-finite values decode as 0.
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number(parseJSONNumber(data))
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (n *Number) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		*n = 0
		return nil
	}
	*n = Number(parseNumberString(value.Value))
	return nil
}

// Float64 returns n as a float64.
func (n Number) Float64() float64 { return float64(n) }

// Count is a non-negative whole-number input. It decodes like Number and then
// truncates toward zero; negative values become 0. Values above MaxCount
// fail to decode.
type Count int

// UnmarshalJSON implements json.Unmarshaler.
func (c *Count) UnmarshalJSON(data []byte) error {
	v, err := toCount(parseJSONNumber(data))
	*c = v
	return err
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *Count) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		*c = 0
		return nil
	}
	v, err := toCount(parseNumberString(value.Value))
	*c = v
	return err
}

// Int returns c as an int.
func (c Count) Int() int { return int(c) }

func (c Count) inRange() bool { return c >= 0 && c <= MaxCount }

func toCount(f float64) (Count, error) {
	f = math.Trunc(f)
	switch {
	case f <= 0:
		return 0, nil
	case f > MaxCount:
		return 0, errCountOutOfRange
	}
	return Count(f), nil
}

func parseJSONNumber(data []byte) float64 {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return 0
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return 0
		}
		return parseNumberString(s)
	}
	return parseNumberString(string(data))
}

func parseNumberString(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// DisposalFlag is the "yes"/"no" switch that enables the disposal fee.
// Booleans are accepted as well; anything else reads as unset.
type DisposalFlag string

const (
	DisposalYes DisposalFlag = "yes"
	DisposalNo  DisposalFlag = "no"
)

// UnmarshalJSON implements json.Unmarshaler.
func (f *DisposalFlag) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		*f = ""
		return nil
	}
	switch t := v.(type) {
	case string:
		*f = DisposalFlag(strings.ToLower(strings.TrimSpace(t)))
	case bool:
		if t {
			*f = DisposalYes
		} else {
			*f = DisposalNo
		}
	default:
		*f = ""
	}
	return nil
}

// Enabled reports whether the flag asks for disposal to be charged.
func (f DisposalFlag) Enabled() bool { return f == DisposalYes }
