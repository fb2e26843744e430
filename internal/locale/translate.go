package locale

// Text 是一条双语文案。
type Text struct {
	ES string
	EN string
}

// In 按语言选择文案。
func (t Text) In(language string) string {
	return Pick(language, t.EN, t.ES)
}

// Pick returns the text matching the request language, defaulting to Spanish.
func Pick(language, english, spanish string) string {
	if NormalizeLanguage(language) == LanguageEnglish {
		if english != "" {
			return english
		}
		return spanish
	}
	if spanish != "" {
		return spanish
	}
	return english
}
