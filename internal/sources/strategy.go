package sources

import (
	"strings"

	"librarium/internal/isbn"
)

// QueryKind says which fields of a Formulation a client should put on the
// wire.
type QueryKind int

const (
	QueryISBN QueryKind = iota
	QueryTitleAuthor
	QueryTitleOnly
)

// Formulation is one concrete query a client can issue. Clients walk the
// ordered plan and stop at the first formulation that yields usable
// candidates.
type Formulation struct {
	Name   string
	Kind   QueryKind
	ISBNs  []string // identifier variants, QueryISBN only
	Title  string
	Author string
	Exact  bool // quote/exact-match the terms where the source supports it
}

// Formulations builds the ordered query plan for a book. Later entries are
// progressively looser; duplicates produced by no-op title rewrites are
// dropped.
func Formulations(rawISBN, title, author string) []Formulation {
	var plan []Formulation

	if variants := isbn.Variants(rawISBN); len(variants) > 0 {
		plan = append(plan, Formulation{
			Name:  "isbn",
			Kind:  QueryISBN,
			ISBNs: variants,
		})
	}

	plan = append(plan, Formulation{
		Name:   "exact",
		Kind:   QueryTitleAuthor,
		Title:  title,
		Author: author,
		Exact:  true,
	})

	if stripped := StripSubtitle(title); stripped != title {
		plan = append(plan, Formulation{
			Name:   "no-subtitle",
			Kind:   QueryTitleAuthor,
			Title:  stripped,
			Author: author,
			Exact:  true,
		})
	}

	if stripped := StripSeries(title); stripped != title {
		plan = append(plan, Formulation{
			Name:   "no-series",
			Kind:   QueryTitleAuthor,
			Title:  stripped,
			Author: author,
			Exact:  true,
		})
	}

	if surname := Surname(author); surname != "" && surname != author {
		plan = append(plan, Formulation{
			Name:   "surname",
			Kind:   QueryTitleAuthor,
			Title:  title,
			Author: surname,
			Exact:  true,
		})
	}

	plan = append(plan, Formulation{
		Name:   "loose",
		Kind:   QueryTitleAuthor,
		Title:  title,
		Author: author,
	})

	plan = append(plan, Formulation{
		Name:  "title-only",
		Kind:  QueryTitleOnly,
		Title: title,
	})

	return plan
}

// StripSubtitle drops everything from the first colon: "Dune: The Graphic
// Novel" -> "Dune".
func StripSubtitle(title string) string {
	if i := strings.Index(title, ":"); i > 0 {
		return strings.TrimSpace(title[:i])
	}
	return title
}

// StripSeries removes parenthetical series markers: "Mistborn (Mistborn,
// #1)" -> "Mistborn".
func StripSeries(title string) string {
	for {
		open := strings.Index(title, "(")
		if open < 0 {
			break
		}
		close := strings.Index(title[open:], ")")
		if close < 0 {
			title = title[:open]
			break
		}
		title = title[:open] + title[open+close+1:]
	}
	return strings.Join(strings.Fields(title), " ")
}

// Surname returns the last word of an author name, or the whole name for
// single-word authors.
func Surname(author string) string {
	fields := strings.Fields(author)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}
