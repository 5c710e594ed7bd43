package fractal

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is a parameter value already coerced to a semantic kind.
type Value struct {
	Kind Kind
	i    int
	f    float64
}

func Real(f float64) Value { return Value{Kind: KindReal, f: f} }
func Int(i int) Value      { return Value{Kind: KindInt, i: i} }
func Enum(i int) Value     { return Value{Kind: KindEnum, i: i} }

// Float returns the value as a real, converting integers.
func (v Value) Float() float64 {
	if v.Kind == KindReal {
		return v.f
	}
	return float64(v.i)
}

// Int returns the value as an integer, truncating reals toward zero.
func (v Value) Int() int {
	if v.Kind == KindReal {
		return int(v.f)
	}
	return v.i
}

func (v Value) String() string {
	if v.Kind == KindReal {
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	}
	return strconv.Itoa(v.i)
}

// Coerce converts raw panel input to the semantic kind of f. Integer and
// enum fields accept a leading signed integer and ignore any trailing text,
// so "1500" and "1500.7" both give 1500. Real fields accept the longest
// leading decimal number.
func Coerce(f Field, raw string) (Value, error) {
	if _, err := ParseField(string(f)); err != nil {
		return Value{}, err
	}
	s := strings.TrimSpace(raw)
	switch f.Kind() {
	case KindInt, KindEnum:
		n, err := parseLeadingInt(s)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %s=%q", ErrBadValue, f, raw)
		}
		if f.Kind() == KindEnum {
			return Enum(n), nil
		}
		return Int(n), nil
	default:
		x, err := parseLeadingFloat(s)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %s=%q", ErrBadValue, f, raw)
		}
		return Real(x), nil
	}
}

func parseLeadingInt(s string) (int, error) {
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, strconv.ErrSyntax
	}
	return strconv.Atoi(s[:end])
}

func parseLeadingFloat(s string) (float64, error) {
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
		digits++
	}
	if end < len(s) && s[end] == '.' {
		end++
		for end < len(s) && s[end] >= '0' && s[end] <= '9' {
			end++
			digits++
		}
	}
	if digits == 0 {
		return 0, strconv.ErrSyntax
	}
	// exponent only counts when followed by at least one digit
	if end < len(s) && (s[end] == 'e' || s[end] == 'E') {
		j := end + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && s[k] >= '0' && s[k] <= '9' {
			k++
		}
		if k > j {
			end = k
		}
	}
	return strconv.ParseFloat(s[:end], 64)
}
