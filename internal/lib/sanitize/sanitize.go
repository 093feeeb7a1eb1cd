// Package sanitize содержит очистку пользовательских значений перед сохранением:
// текстовые поля, многострочный текст, URL, ключи и hex-цвета.
package sanitize

import (
	"html"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/cases"
)

var (
	strict     *bluemonday.Policy
	strictOnce sync.Once

	hexColorRe   = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}){1,2}$`)
	whitespaceRe = regexp.MustCompile(`[\t\n\r ]+`)

	allowedSchemes = map[string]bool{
		"http":   true,
		"https":  true,
		"mailto": true,
		"tel":    true,
		"ftp":    true,
	}
)

func policy() *bluemonday.Policy {
	strictOnce.Do(func() {
		strict = bluemonday.StrictPolicy()
	})
	return strict
}

const maxStripPasses = 8

// stripTags снимает теги, пока строка не перестанет меняться: после
// раскодирования сущностей "&lt;b&gt;" снова становится тегом.
func stripTags(s string) string {
	for i := 0; i < maxStripPasses; i++ {
		out := html.UnescapeString(policy().Sanitize(s))
		if out == s {
			return out
		}
		s = out
	}

	// слишком глубокая вложенность сущностей, угловые скобки просто убираем
	return strings.NewReplacer("<", "", ">", "").Replace(html.UnescapeString(policy().Sanitize(s)))
}

// Text убирает теги, переводы строк и лишние пробелы.
func Text(s string) string {
	s = stripTags(s)
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Textarea убирает теги, но сохраняет переводы строк.
func Textarea(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = stripTags(s)

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRightFunc(line, unicode.IsSpace)
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// URL возвращает пустую строку для ссылок с недопустимой схемой.
// Ссылки без схемы вида "example.com/page" дополняются http://.
func URL(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || r == ' ' {
			return -1
		}
		return r
	}, s)
	if s == "" {
		return ""
	}

	if strings.HasPrefix(s, "/") || strings.HasPrefix(s, "#") || strings.HasPrefix(s, "?") {
		if _, err := url.Parse(s); err != nil {
			return ""
		}
		return s
	}

	u, err := url.Parse(s)
	if err != nil {
		return ""
	}

	if u.Scheme == "" {
		u, err = url.Parse("http://" + s)
		if err != nil || u.Host == "" {
			return ""
		}
		return u.String()
	}

	if !allowedSchemes[strings.ToLower(u.Scheme)] {
		return ""
	}

	return u.String()
}

// Key оставляет только [a-z0-9_-].
func Key(s string) string {
	s = strings.ToLower(s)

	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}

	return b.String()
}

// UnicodeKey работает как Key, но сохраняет буквы и цифры любых алфавитов
// и знак %. Нужен для значений, в которых хранятся slug-и фильтров: slug
// смешанного имени может содержать %xx.
func UnicodeKey(s string) string {
	s = cases.Fold().String(s)

	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) || r == '_' || r == '-' || r == '%' {
			b.WriteRune(r)
		}
	}

	return b.String()
}

// HexColor возвращает цвет как есть, если он в формате #rgb или #rrggbb, иначе "".
func HexColor(s string) string {
	s = strings.TrimSpace(s)
	if hexColorRe.MatchString(s) {
		return s
	}
	return ""
}
