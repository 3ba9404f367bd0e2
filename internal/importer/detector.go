package importer

import (
	"strings"

	"librarium/internal/entities"
	"librarium/internal/goodreads"
	"librarium/internal/isbn"
)

// Detector answers "is this record already in the library?" for one user.
// A book is known by its export identifier, by ISBN (either length), or by
// case-insensitive title plus author, checked in that order.
//
// Not safe for concurrent use; the coordinator serializes access.
type Detector struct {
	keys map[string]struct{}
}

func NewDetector(existing []entities.Book) *Detector {
	d := &Detector{keys: make(map[string]struct{})}
	for _, b := range existing {
		d.add(b.ExternalID, b.ISBN, b.Title, b.Author)
	}
	return d
}

// IsDuplicate reports whether any identity key of the record is already
// known.
func (d *Detector) IsDuplicate(book goodreads.ParsedBook) bool {
	for _, key := range identityKeys(book.ExternalID, book.ISBN, book.Title, book.Author) {
		if _, ok := d.keys[key]; ok {
			return true
		}
	}
	return false
}

// Remember registers an imported record so later rows in the same file are
// caught too.
func (d *Detector) Remember(book goodreads.ParsedBook) {
	d.add(book.ExternalID, book.ISBN, book.Title, book.Author)
}

func (d *Detector) add(externalID, bookISBN, title, author string) {
	for _, key := range identityKeys(externalID, bookISBN, title, author) {
		d.keys[key] = struct{}{}
	}
}

func identityKeys(externalID, bookISBN, title, author string) []string {
	var keys []string
	if externalID != "" {
		keys = append(keys, "ext:"+externalID)
	}
	// Index both ISBN forms so a 10-digit export row collides with an
	// existing 13-digit record.
	for _, v := range isbn.Variants(bookISBN) {
		keys = append(keys, "isbn:"+v)
	}
	if title != "" && author != "" {
		keys = append(keys, "ta:"+strings.ToLower(title)+"|"+strings.ToLower(author))
	}
	return keys
}
