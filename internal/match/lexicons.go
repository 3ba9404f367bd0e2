package match

import "strings"

// studyGuideTerms flag summaries, study aids, and workbooks masquerading as
// the real book. German terms cover a family of study-aid publishers that
// flood search results for classics.
var studyGuideTerms = []string{
	"summary",
	"study guide",
	"sparknotes",
	"cliffsnotes",
	"cliffs notes",
	"shortform",
	"key takeaways",
	"workbook",
	"analysis of",
	"conversation starters",
	"zusammenfassung",
	"lektürehilfe",
	"lektüreschlüssel",
	"königs erläuterungen",
}

// nonEnglishMarkers are connector words and phrases common in the languages
// the sources most often return. A description with three or more distinct
// hits is treated as non-English.
var nonEnglishMarkers = []string{
	// German
	" der ", " die ", " das ", " und ", " nicht ", " eine ", " wird ",
	// French
	" le ", " la ", " les ", " une ", " dans ", " avec ", " pour ",
	// Spanish
	" el ", " los ", " las ", " una ", " con ", " para ", " que ",
	// Italian
	" di ", " che ", " della ", " gli ",
	// Portuguese
	" uma ", " não ", " são ",
	// Dutch
	" het ", " een ", " van de ",
}

// IsStudyGuide reports whether a title matches the summary/study-guide
// lexicon.
func IsStudyGuide(title string) bool {
	t := strings.ToLower(title)
	for _, term := range studyGuideTerms {
		if strings.Contains(t, term) {
			return true
		}
	}
	return false
}

// IsNonEnglish counts lexicon hits in a description and reports true at
// three or more distinct markers.
func IsNonEnglish(description string) bool {
	d := " " + strings.ToLower(description) + " "
	hits := 0
	for _, marker := range nonEnglishMarkers {
		if strings.Contains(d, marker) {
			hits++
			if hits >= 3 {
				return true
			}
		}
	}
	return false
}
