package services

import "storyadmin/internal/domain/models"

// SampleSections is the fixed fallback shown when generation fails or comes
// back empty, so the authoring flow stays usable without a working webhook.
func SampleSections() []models.GeneratedSection {
	return []models.GeneratedSection{
		{
			SectionNumber: 1,
			Heading: models.LangMap{
				models.LangEnglish: "A Quiet Morning",
				models.LangTelugu:  "",
				models.LangHindi:   "",
			},
			Quote: models.LangMap{
				models.LangEnglish: "Every big day starts small.",
				models.LangTelugu:  "",
				models.LangHindi:   "",
			},
			SectionText: models.LangMap{
				models.LangEnglish: "The sun rose over the sleepy village and the little fox stretched her paws.",
				models.LangTelugu:  "",
				models.LangHindi:   "",
			},
			ImageGen: "a small fox stretching at sunrise, children's book illustration",
		},
		{
			SectionNumber: 2,
			Heading: models.LangMap{
				models.LangEnglish: "Off We Go",
				models.LangTelugu:  "",
				models.LangHindi:   "",
			},
			Quote: models.LangMap{
				models.LangEnglish: "",
				models.LangTelugu:  "",
				models.LangHindi:   "",
			},
			SectionText: models.LangMap{
				models.LangEnglish: "With her satchel packed, she trotted down the winding path toward the river.",
				models.LangTelugu:  "",
				models.LangHindi:   "",
			},
			ImageGen: "a fox with a satchel walking a winding path, children's book illustration",
		},
	}
}
