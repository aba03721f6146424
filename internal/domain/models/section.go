package models

// GeneratedSection is a section produced by the generation webhook. It lives
// in the authoring workspace until it is promoted into a Part.
type GeneratedSection struct {
	SectionNumber int     `json:"sectionNumber"`
	Heading       LangMap `json:"heading"`
	Quote         LangMap `json:"quote"`
	SectionText   LangMap `json:"sectionText"`
	OneLineText   LangMap `json:"oneLineText"`
	ImageGen      string  `json:"image_gen"`
}

// RenumberSections assigns contiguous 1-based section numbers, preserving the
// relative order of the slice.
func RenumberSections(sections []GeneratedSection) []GeneratedSection {
	for i := range sections {
		sections[i].SectionNumber = i + 1
	}
	return sections
}

// DeleteSection removes the section with the given 1-based number and
// renumbers the remainder. The slice is returned unchanged when the number is
// out of range.
func DeleteSection(sections []GeneratedSection, number int) []GeneratedSection {
	idx := -1
	for i, s := range sections {
		if s.SectionNumber == number {
			idx = i
			break
		}
	}
	if idx < 0 {
		return sections
	}

	out := make([]GeneratedSection, 0, len(sections)-1)
	out = append(out, sections[:idx]...)
	out = append(out, sections[idx+1:]...)

	return RenumberSections(out)
}

// ToSection converts a generated section into the part section shape used by
// the content backend.
func (g GeneratedSection) ToSection() Section {
	return Section{
		Heading:  g.Heading,
		Quote:    g.Quote,
		Text:     g.SectionText,
		ImageURL: g.ImageGen,
	}
}
