package domain

import "strings"

// consumerEmailProviders are domains that never identify a company.
var consumerEmailProviders = map[string]struct{}{
	"gmail.com":      {},
	"yahoo.com":      {},
	"hotmail.com":    {},
	"outlook.com":    {},
	"aol.com":        {},
	"icloud.com":     {},
	"proton.me":      {},
	"protonmail.com": {},
}

// ExtractCompanyDomain returns the corporate domain of an email address,
// or "" when the address has no domain part or the domain belongs to a
// consumer email provider. The denylist match is case-insensitive; the
// returned domain keeps the casing of the source address.
func ExtractCompanyDomain(email string) string {
	_, dom, found := strings.Cut(email, "@")
	if !found || dom == "" {
		return ""
	}
	if _, consumer := consumerEmailProviders[strings.ToLower(dom)]; consumer {
		return ""
	}
	return dom
}
