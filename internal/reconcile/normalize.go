package reconcile

import (
	"regexp"
	"strings"

	"gstreco/internal/domain"
)

var (
	nonAlphanumeric = regexp.MustCompile(`[^A-Z0-9]`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
	namePunctuation = regexp.MustCompile("[.,/#!$%^&*;:{}=\\-_`~()]")

	// Order matters: the private-limited rule must run before the bare LTD rule.
	privateLimited = regexp.MustCompile(`\s*\bPVT\s*LTD\b\.?`)
	bareLimited    = regexp.MustCompile(`\s*\bLTD\b\.?`)
)

// NormalizeGSTIN trims, uppercases and strips everything outside [A-Z0-9].
func NormalizeGSTIN(gstin string) string {
	return nonAlphanumeric.ReplaceAllString(strings.ToUpper(strings.TrimSpace(gstin)), "")
}

// NormalizeDocNo uppercases and strips everything outside [A-Z0-9].
func NormalizeDocNo(docNo string) string {
	return nonAlphanumeric.ReplaceAllString(strings.ToUpper(docNo), "")
}

// NormalizeName canonicalizes a supplier name for keying and fuzzy comparison.
func NormalizeName(name string) string {
	s := strings.ToUpper(strings.TrimSpace(name))
	if s == "" {
		return ""
	}
	s = whitespaceRun.ReplaceAllString(s, " ")
	s = namePunctuation.ReplaceAllString(s, "")
	s = replaceFirst(privateLimited, s, " PRIVATE LIMITED")
	s = replaceFirst(bareLimited, s, " LIMITED")
	return strings.TrimSpace(s)
}

func replaceFirst(re *regexp.Regexp, s, repl string) string {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + repl + s[loc[1]:]
}

// GSTINKey returns "{gstin}-{docNo}", or "" when either part normalizes to empty.
func GSTINKey(rec *domain.InvoiceRecord) string {
	docNo := NormalizeDocNo(rec.DocNo)
	gstin := NormalizeGSTIN(rec.SupplierGSTIN)
	if docNo == "" || gstin == "" {
		return ""
	}
	return gstin + "-" + docNo
}

// NameKey returns "{name}-{docNo}", or "" when either part normalizes to empty.
func NameKey(rec *domain.InvoiceRecord) string {
	docNo := NormalizeDocNo(rec.DocNo)
	name := NormalizeName(rec.SupplierName)
	if docNo == "" || name == "" {
		return ""
	}
	return name + "-" + docNo
}

// IdentityKey keys on GSTIN when present and falls back to the supplier name.
func IdentityKey(rec *domain.InvoiceRecord) (string, domain.MatchBasis) {
	if key := GSTINKey(rec); key != "" {
		return key, domain.MatchBasisGSTIN
	}
	if key := NameKey(rec); key != "" {
		return key, domain.MatchBasisName
	}
	return "", domain.MatchBasisNone
}
