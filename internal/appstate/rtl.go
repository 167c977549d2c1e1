package appstate

// Языки с письмом справа налево.
var rtlLanguages = map[string]bool{
	"ar": true,
	"he": true,
}

// IsRTL сообщает, требует ли язык RTL-раскладки.
func IsRTL(lang string) bool {
	return rtlLanguages[lang]
}

// RTLLanguages возвращает список RTL-языков (для выдачи фронту).
func RTLLanguages() []string {
	return []string{"ar", "he"}
}
