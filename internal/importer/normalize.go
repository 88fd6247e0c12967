package importer

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/flemdev/portal-ppe/internal/store"
)

// ReviewMarker prefixes any field that failed automatic resolution and
// needs a human decision on the review screen.
const ReviewMarker = "*"

// NotInformedEthnicity is the canonical fallback for blank ethnicity values.
// Every tenant's ethnicity table must contain it.
const NotInformedEthnicity = "Não Informada"

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeText is the single equality basis of the whole pipeline: strips
// diacritics, lowercases and collapses whitespace. Idempotent.
func NormalizeText(raw string) string {
	stripped, _, err := transform.String(stripMarks, raw)
	if err != nil {
		stripped = raw
	}
	return strings.Join(strings.Fields(strings.ToLower(stripped)), " ")
}

// Resolution is the outcome of matching a raw value against a reference
// list: either the canonical value, or the raw value flagged for review.
type Resolution struct {
	Value   string
	Matched bool
}

func resolved(value string) Resolution {
	return Resolution{Value: value, Matched: true}
}

func needsReview(raw string) Resolution {
	return Resolution{Value: ReviewMarker + raw, Matched: false}
}

// ResolveName scans canonical names in order and returns the first
// normalized-equal match, or the raw value flagged for review.
func ResolveName(raw string, canonical []string) Resolution {
	normalized := NormalizeText(raw)
	for _, name := range canonical {
		if NormalizeText(name) == normalized {
			return resolved(name)
		}
	}
	return needsReview(raw)
}

// ResolveDemandingOrg resolves a raw demanding-organization value, which may
// come as "SIGLA - Full Name", against the reference list. The abbreviation
// is tried first, then the full name after the dash, then the whole raw
// value against full names. A match always yields the canonical
// "SIGLA - Full Name" pair.
func ResolveDemandingOrg(raw string, orgs []store.DemandingOrg) Resolution {
	if strings.Contains(raw, "-") {
		parts := strings.SplitN(strings.TrimSpace(raw), "-", 2)
		abbrev := NormalizeText(parts[0])
		fullName := NormalizeText(parts[1])
		for _, org := range orgs {
			if NormalizeText(org.Abbreviation) == abbrev || NormalizeText(org.Name) == fullName {
				return resolved(org.Abbreviation + " - " + org.Name)
			}
		}
	}

	normalized := NormalizeText(raw)
	for _, org := range orgs {
		if NormalizeText(org.Name) == normalized {
			return resolved(org.Abbreviation + " - " + org.Name)
		}
	}
	return needsReview(raw)
}

// ResolveEthnicity treats blank input as "not informed" rather than a
// review case. The canonical "Não Informada" entry must exist; a tenant
// without it cannot import at all.
func ResolveEthnicity(raw string, ethnicities []store.Ethnicity) (Resolution, error) {
	if strings.TrimSpace(raw) == "" {
		for _, e := range ethnicities {
			if e.Name == NotInformedEthnicity {
				return resolved(e.Name), nil
			}
		}
		return Resolution{}, fmt.Errorf("ethnicity reference list is missing the %q entry", NotInformedEthnicity)
	}

	names := make([]string, len(ethnicities))
	for i, e := range ethnicities {
		names[i] = e.Name
	}
	return ResolveName(raw, names), nil
}
