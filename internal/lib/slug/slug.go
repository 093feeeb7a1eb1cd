// Package slug строит URL-безопасные slug-и и идентификаторы фильтров.
//
// Порядок генерации slug-а:
//  1. ASCII: нижний регистр, диакритика снимается, прочие буквы кодируются
//     в %xx, всё остальное превращается в дефис.
//  2. Если результат пуст или состоит только из %xx, используется Unicode-вариант.
//  3. Если и он пуст, берётся детерминированный хеш от имени.
package slug

import (
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	hashPrefix = "filter-"
	hashLen    = 8
	idBaseMax  = 40
)

// Generate возвращает непустой slug для имени фильтра.
func Generate(name string) string {
	if s := ASCII(name); s != "" && !PercentEncodedOnly(s) {
		return s
	}

	if s := Unicode(name); s != "" {
		return s
	}

	return Hash(name)
}

// ASCII повторяет поведение классического slugify: латиница и цифры
// остаются, диакритика снимается, остальные буквы кодируются в %xx.
func ASCII(name string) string {
	stripped, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		name,
	)
	if err != nil {
		stripped = name
	}

	var b strings.Builder
	for _, r := range stripped {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			for _, c := range []byte(string(r)) {
				fmt.Fprintf(&b, "%%%02x", c)
			}
		default:
			b.WriteByte('-')
		}
	}

	return collapse(b.String())
}

// Unicode сохраняет буквы и цифры любых алфавитов, остальное заменяет дефисом.
func Unicode(name string) string {
	folded := norm.NFC.String(cases.Fold().String(name))

	var b strings.Builder
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('-')
	}

	return collapse(b.String())
}

// Hash возвращает "filter-" и первые 8 hex-символов blake2b от имени.
func Hash(name string) string {
	sum := blake2b.Sum256([]byte(name))
	return hashPrefix + hex.EncodeToString(sum[:])[:hashLen]
}

// PercentEncodedOnly сообщает, состоит ли строка только из %xx и дефисов.
func PercentEncodedOnly(s string) bool {
	seen := false

	for i := 0; i < len(s); {
		switch {
		case s[i] == '-':
			i++
		case s[i] == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]):
			seen = true
			i += 3
		default:
			return false
		}
	}

	return seen
}

// Unique добавляет суффиксы -2, -3, ... пока exists возвращает true.
func Unique(candidate string, exists func(string) bool) string {
	if !exists(candidate) {
		return candidate
	}

	for n := 2; ; n++ {
		s := fmt.Sprintf("%s-%d", candidate, n)
		if !exists(s) {
			return s
		}
	}
}

// FilterID строит идентификатор фильтра. Идентификатор не обязан быть
// читаемым, но после создания больше не меняется.
func FilterID(name string) string {
	base := ASCII(name)
	if base == "" || PercentEncodedOnly(base) || strings.Contains(base, "%") {
		base = Hash(name)
	}

	if len(base) > idBaseMax {
		base = strings.TrimRight(base[:idBaseMax], "-")
	}

	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]

	return base + "-" + token
}

func collapse(s string) string {
	var b strings.Builder

	prevDash := false
	for _, r := range s {
		if r == '-' {
			if prevDash {
				continue
			}
			prevDash = true
		} else {
			prevDash = false
		}
		b.WriteRune(r)
	}

	return strings.Trim(b.String(), "-")
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
