package story

import (
	"fmt"
	"strings"
)

// Language 故事语言
type Language string

const (
	LanguageTurkish Language = "tr"
	LanguageEnglish Language = "en"
)

// 生成参数默认值与范围
const (
	DefaultAge       = 5
	DefaultLengthSec = 110
	DefaultLanguage  = LanguageTurkish

	// wordsPerMinute 朗读语速
	wordsPerMinute = 130
)

// Valid 是否为支持的语言
func (l Language) Valid() bool {
	return l == LanguageTurkish || l == LanguageEnglish
}

// PromptParams 提示词参数
type PromptParams struct {
	Theme         string
	Age           int
	LengthSec     int
	Language      Language
	CharacterName string
}

// EstimateWordCount 按固定语速估算目标词数
func EstimateWordCount(lengthSec int) int {
	return lengthSec * wordsPerMinute / 60
}

// BuildPrompt 构造生成指令
func BuildPrompt(p PromptParams) string {
	words := EstimateWordCount(p.LengthSec)
	theme := strings.TrimSpace(p.Theme)
	name := p.CharacterName

	if p.Language == LanguageEnglish {
		if theme == "" {
			theme = "soothing"
		}
		if name == "" {
			name = "Little Hero"
		}
		return fmt.Sprintf(englishTemplate, words, theme, p.Age, name)
	}

	if theme == "" {
		theme = "rahatlatıcı"
	}
	if name == "" {
		name = "Minik Kahraman"
	}
	return fmt.Sprintf(turkishTemplate, words, theme, p.Age, name)
}

const turkishTemplate = `Başlık dahil %d kelimelik kısa uyku masalı yaz.
Tema: %s
Yaş: %d
Karakter Adı: %s

Kurallar:
- Yumuşak, sade dil kullan
- Yaklaşık 90–120 saniyede okunacak uzunlukta tut
- Pozitif, huzurlu son
- İlk satır başlık olsun

Sadece masalı yaz; ek açıklama yapma.`

const englishTemplate = `Write a %d-word bedtime story (including title).
Theme: %s
Age: %d
Character Name: %s

Rules:
- Calm, simple tone
- Keep it ~90–120 seconds read-aloud
- Positive, peaceful ending
- First line should be the title

Output only the story; no extra text.`
