package schema

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"portfolio_gallery/internal/lib/sanitize"
)

var ErrUnknownKey = errors.New("unknown setting key")

// CoercionError значение не прошло проверку и было заменено значением по умолчанию.
type CoercionError struct {
	Key   string
	Raw   any
	Cause string
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("setting %q: %s (raw %v), default used", e.Key, e.Cause, e.Raw)
}

// Coerce приводит сырое значение к типу из схемы.
// Для неизвестного ключа возвращает ErrUnknownKey и nil.
// Для некорректного значения возвращает значение по умолчанию и *CoercionError.
func Coerce(key string, raw any) (any, error) {
	f, ok := index[key]
	if !ok {
		return nil, ErrUnknownKey
	}

	return f.Coerce(raw)
}

// Coerce см. schema.Coerce.
func (f Field) Coerce(raw any) (any, error) {
	switch f.Type {
	case TypeBool:
		return toBool(raw), nil

	case TypeInt:
		n, ok := toInt(raw)
		if !ok {
			return f.Default, &CoercionError{Key: f.Key, Raw: raw, Cause: "not a number"}
		}
		return f.clamp(n), nil

	case TypeEnum:
		s := strings.TrimSpace(toString(raw))
		for _, opt := range f.Options {
			if s == opt {
				return s, nil
			}
		}
		return f.Default, &CoercionError{Key: f.Key, Raw: raw, Cause: "not an allowed value"}

	case TypeColor:
		s := strings.TrimSpace(toString(raw))
		if s == "" {
			return f.Default, nil
		}
		if c := sanitize.HexColor(s); c != "" {
			return c, nil
		}
		return f.Default, &CoercionError{Key: f.Key, Raw: raw, Cause: "not a hex color"}

	case TypeString:
		s := toString(raw)
		switch f.Kind {
		case KindTextarea:
			return sanitize.Textarea(s), nil
		case KindURL:
			clean := sanitize.URL(s)
			if clean == "" && strings.TrimSpace(s) != "" {
				return f.Default, &CoercionError{Key: f.Key, Raw: raw, Cause: "invalid url"}
			}
			return clean, nil
		case KindKey:
			return sanitize.Key(s), nil
		case KindSlug:
			return sanitize.UnicodeKey(s), nil
		default:
			return sanitize.Text(s), nil
		}
	}

	return f.Default, &CoercionError{Key: f.Key, Raw: raw, Cause: "unsupported type"}
}

func (f Field) clamp(n int) int {
	if f.Min >= 0 && n < 0 {
		n = -n
	}
	if n < f.Min {
		n = f.Min
	}
	if f.Max > f.Min && n > f.Max {
		n = f.Max
	}
	return n
}

// FillMissingBools выставляет false всем булевым ключам, которых нет в форме.
// Снятый чекбокс вообще не попадает в отправленную форму, поэтому отсутствие
// ключа при сохранении формы означает false, а не "оставить как было".
func FillMissingBools(raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw)+len(fields))
	for k, v := range raw {
		out[k] = v
	}

	for _, key := range BoolKeys() {
		if _, ok := out[key]; !ok {
			out[key] = false
		}
	}

	return out
}

func toBool(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "", "0", "false", "off", "no":
			return false
		}
		return true
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case []any:
		return len(v) > 0
	}

	return true
}

func toInt(raw any) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float32:
		return toInt(float64(v))
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return int(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case string:
		s := strings.TrimSpace(v)
		if n, err := strconv.Atoi(s); err == nil {
			return n, true
		}
		if fl, err := strconv.ParseFloat(s, 64); err == nil {
			return toInt(fl)
		}
	}

	return 0, false
}

func toString(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "1"
		}
		return ""
	}

	return fmt.Sprint(raw)
}

// ToInt числовое приведение без ограничения диапазоном.
func ToInt(raw any) (int, bool) {
	return toInt(raw)
}

// ToBool приведение по правилам чекбоксов формы.
func ToBool(raw any) bool {
	return toBool(raw)
}
