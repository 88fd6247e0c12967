// Package masks formats Brazilian identity and contact fields the way the
// review screens expect them: CPF with dots and dash, phones with area code,
// proper names in pt-BR title case.
package masks

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titler = cases.Title(language.BrazilianPortuguese)

// Connectives stay lowercase inside capitalized names ("Maria da Silva").
var lowercaseWords = map[string]bool{
	"da": true, "das": true, "de": true, "do": true, "dos": true, "e": true,
}

func onlyDigits(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CPF formats a raw national ID as 000.000.000-00, left-padding with zeros
// when the leading digits were lost upstream. Empty input stays empty.
func CPF(raw string) string {
	digits := onlyDigits(raw)
	if digits == "" {
		return ""
	}
	for len(digits) < 11 {
		digits = "0" + digits
	}
	if len(digits) > 11 {
		digits = digits[len(digits)-11:]
	}
	return digits[0:3] + "." + digits[3:6] + "." + digits[6:9] + "-" + digits[9:11]
}

// Phone formats a raw number as (dd) ddddd-dddd (mobile) or (dd) dddd-dddd.
// Numbers without an area code are returned digits-only.
func Phone(raw string) string {
	digits := onlyDigits(raw)
	switch len(digits) {
	case 11:
		return "(" + digits[0:2] + ") " + digits[2:7] + "-" + digits[7:11]
	case 10:
		return "(" + digits[0:2] + ") " + digits[2:6] + "-" + digits[6:10]
	default:
		return digits
	}
}

// Capitalize title-cases a free-text name, keeping Portuguese connectives
// lowercase except at the start.
func Capitalize(raw string) string {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(raw)))
	for i, w := range words {
		if i > 0 && lowercaseWords[w] {
			continue
		}
		words[i] = titler.String(w)
	}
	return strings.Join(words, " ")
}
