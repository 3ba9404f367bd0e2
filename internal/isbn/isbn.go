// Package isbn converts and normalizes book identifiers so that source
// adapters can query every known variant of an ISBN.
package isbn

import "strings"

// Normalize strips separators and whitespace from an ISBN. Returns an empty
// string when the remainder is not a plausible ISBN-10 or ISBN-13.
func Normalize(raw string) string {
	s := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9':
			return r
		case r == 'x' || r == 'X':
			return 'X'
		}
		return -1
	}, raw)

	if len(s) != 10 && len(s) != 13 {
		return ""
	}
	return s
}

// To13 computes the ISBN-13 form of a 10-digit identifier by prefixing 978
// to its first nine digits and recomputing the check digit.
func To13(isbn10 string) string {
	isbn10 = Normalize(isbn10)
	if len(isbn10) != 10 {
		return ""
	}

	body := "978" + isbn10[:9]
	sum := 0
	for i, r := range body {
		d := int(r - '0')
		if i%2 == 0 {
			sum += d
		} else {
			sum += d * 3
		}
	}
	check := (10 - sum%10) % 10

	return body + string(rune('0'+check))
}

// To10 computes the ISBN-10 form of a 978-prefixed ISBN-13. Returns an empty
// string for 979-prefixed identifiers, which have no ISBN-10 equivalent.
func To10(isbn13 string) string {
	isbn13 = Normalize(isbn13)
	if len(isbn13) != 13 || !strings.HasPrefix(isbn13, "978") {
		return ""
	}

	body := isbn13[3:12]
	sum := 0
	for i, r := range body {
		d := int(r - '0')
		sum += d * (10 - i)
	}
	check := (11 - sum%11) % 11
	if check == 10 {
		return body + "X"
	}
	return body + string(rune('0'+check))
}

// Variants returns every queryable form of an identifier: the normalized
// input plus its converted counterpart when one exists. The normalized input
// always comes first.
func Variants(raw string) []string {
	base := Normalize(raw)
	if base == "" {
		return nil
	}

	variants := []string{base}
	switch len(base) {
	case 10:
		if v := To13(base); v != "" {
			variants = append(variants, v)
		}
	case 13:
		if v := To10(base); v != "" {
			variants = append(variants, v)
		}
	}
	return variants
}
