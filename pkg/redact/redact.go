// redact маскирует чувствительные данные перед записью в логи:
// e-mail получателей OTP, токены и одноразовые коды.
package redact

import "strings"

// Email маскирует e-mail для логирования.
//
// Правила:
//   - строка должна содержать ровно один '@', иначе возвращается "***";
//   - локальная часть сокращается до первых двух рун + "***";
//   - если локальная часть не длиннее двух рун - "***@<domain>".
//
// Примеры:
//
//	"foobar@example.com" -> "fo***@example.com"
//	"ab@ex.com"          -> "***@ex.com"
//	"no-at"              -> "***"
func Email(s string) string {
	if strings.Count(s, "@") != 1 {
		return "***"
	}

	i := strings.IndexByte(s, '@')
	local, domain := s[:i], s[i+1:]

	lr := []rune(local)
	if len(lr) > 2 {
		local = string(lr[:2]) + "***"
	} else {
		local = "***"
	}

	return local + "@" + domain
}

// Device укорачивает отпечаток устройства (user-agent) до n рун.
// Полный user-agent в логах бесполезен и раздувает записи.
func Device(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}

	return string(r[:n]) + "…"
}

// Token возвращает заглушку для токена в логах.
func Token() string { return "[REDACTED_TOKEN]" }

// OTP возвращает заглушку для одноразового кода в логах.
func OTP() string { return "[REDACTED_OTP]" }
