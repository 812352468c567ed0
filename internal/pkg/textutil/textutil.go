// Package textutil - нормализация турецкого текста для поиска и вывода
// в однобайтовые форматы.
package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var dotlessI = strings.NewReplacer("ı", "i")

func stripMarks() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// ASCII убирает диакритику: "Şoför Işık" -> "Sofor Isik"
func ASCII(s string) string {
	out, _, err := transform.String(stripMarks(), s)
	if err != nil {
		out = s
	}
	return dotlessI.Replace(out)
}

// Fold приводит строку к виду для поиска без учета регистра и диакритики.
// Регистр снимается по турецким правилам (I -> ı, İ -> i).
func Fold(s string) string {
	lower := cases.Lower(language.Turkish).String(strings.TrimSpace(s))
	return ASCII(lower)
}

// Contains проверяет вхождение needle в haystack после Fold
func Contains(haystack, needle string) bool {
	return strings.Contains(Fold(haystack), Fold(needle))
}

// Digits оставляет только цифры (поиск по телефону)
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
