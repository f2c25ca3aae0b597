package domain

import "unicode/utf8"

// Source - один результат поиска в том виде, в каком он уходит в промпт и в список ссылок
type Source struct {
	Title   string
	URL     string
	Excerpt string
}

// Truncate обрезает строку до n символов (рун), не ломая UTF-8
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}

	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
