package export

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"gstreco/internal/domain"
)

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename replaces non-alphanumeric chars (except - _) with _,
// collapses consecutive underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns reconciliation_{period}_{YYYY-MM-DD}.{ext}.
func BuildFilename(period domain.Period, ext string, now time.Time) string {
	base := SanitizeFilename("reconciliation_" + period.String())
	return fmt.Sprintf("%s_%s.%s", base, now.Format("2006-01-02"), ext)
}
