package story

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateWordCount(t *testing.T) {
	assert.Equal(t, 238, EstimateWordCount(110))
	assert.Equal(t, 65, EstimateWordCount(30))
	assert.Equal(t, 650, EstimateWordCount(300))
}

func TestBuildPrompt_TurkishDefaults(t *testing.T) {
	prompt := BuildPrompt(PromptParams{Age: 5, LengthSec: 110, Language: LanguageTurkish})

	assert.True(t, strings.HasPrefix(prompt, "Başlık dahil 238 kelimelik kısa uyku masalı yaz.\n"))
	assert.Contains(t, prompt, "Tema: rahatlatıcı\n")
	assert.Contains(t, prompt, "Yaş: 5\n")
	assert.Contains(t, prompt, "Karakter Adı: Minik Kahraman\n")
	assert.Contains(t, prompt, "- İlk satır başlık olsun")
	assert.True(t, strings.HasSuffix(prompt, "Sadece masalı yaz; ek açıklama yapma."))
}

func TestBuildPrompt_English(t *testing.T) {
	prompt := BuildPrompt(PromptParams{
		Theme:         "space",
		Age:           7,
		LengthSec:     60,
		Language:      LanguageEnglish,
		CharacterName: "Ada",
	})

	expected := "Write a 130-word bedtime story (including title).\n" +
		"Theme: space\n" +
		"Age: 7\n" +
		"Character Name: Ada\n\n" +
		"Rules:\n" +
		"- Calm, simple tone\n" +
		"- Keep it ~90–120 seconds read-aloud\n" +
		"- Positive, peaceful ending\n" +
		"- First line should be the title\n\n" +
		"Output only the story; no extra text."
	assert.Equal(t, expected, prompt)
}

func TestBuildPrompt_EnglishDefaults(t *testing.T) {
	prompt := BuildPrompt(PromptParams{Age: 5, LengthSec: 110, Language: LanguageEnglish})

	assert.Contains(t, prompt, "Theme: soothing\n")
	assert.Contains(t, prompt, "Character Name: Little Hero\n")
}

func TestLanguageValid(t *testing.T) {
	assert.True(t, LanguageTurkish.Valid())
	assert.True(t, LanguageEnglish.Valid())
	assert.False(t, Language("de").Valid())
}
