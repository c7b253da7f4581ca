// redact маскирует чувствительные значения перед записью в лог.
// Токены не пишутся никогда; e-mail и id сессии только частично.
package redact

import "strings"

// Email оставляет первые две руны локальной части и домен.
func Email(s string) string {
	local, domain, ok := strings.Cut(s, "@")
	if !ok || strings.Contains(domain, "@") {
		return "***"
	}

	r := []rune(local)
	if len(r) <= 2 {
		return "***@" + domain
	}

	return string(r[:2]) + "***@" + domain
}

// Token сообщает только, есть ли токен и похож ли он на JWT.
func Token(s string) string {
	switch {
	case s == "":
		return "<none>"
	case strings.Count(s, ".") == 2:
		return "[jwt]"
	default:
		return "[opaque]"
	}
}

// SessionID — префикс id сессии: cookie сессии даёт доступ к её паре токенов.
func SessionID(id string) string {
	if len(id) <= 8 {
		return "***"
	}

	return id[:8]
}
