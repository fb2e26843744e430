package handler

import (
	"github.com/allive/internal/locale"
	"github.com/allive/internal/service"
)

const statsTitle = "Estadísticas"

// categoryTitles 是各分类页面的西语标题
var categoryTitles = map[string]string{
	service.CategoryExercise:  "Ejercicio",
	service.CategoryNutrition: "Nutrición",
	service.CategorySleep:     "Sueño",
	service.CategoryHydration: "Hidratación",
}

var fixedTitleMap = map[string]string{
	"Iniciar sesión": "Log in",
	"Crear cuenta":   "Sign up",
	"Estadísticas":   "Statistics",
	"Ejercicio":      "Exercise",
	"Nutrición":      "Nutrition",
	"Sueño":          "Sleep",
	"Hidratación":    "Hydration",
}

func localizeFixedTitle(language, title string) string {
	if title == "" {
		return title
	}
	normalized := locale.NormalizeLanguage(language)
	if normalized == locale.LanguageEnglish {
		if mapped, ok := fixedTitleMap[title]; ok {
			return mapped
		}
		return title
	}
	for key, value := range fixedTitleMap {
		if value == title {
			return key
		}
	}
	return title
}
