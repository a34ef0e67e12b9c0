package generate

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/mesh-intelligence/devotional/pkg/types"
)

// Content styles.
const (
	StyleCasual   = "casual"
	StyleAcademic = "academic"
)

// Persona describes the reader a devotional is written for.
type Persona struct {
	VerseReference string
	VerseText      string
	AgeRange       string
	Gender         string
	LifeStage      string
	Language       string
	Style          string
}

// PersonaForKey builds a Persona from a normalized cache key.
func PersonaForKey(key types.CacheKey, verseText, style string) Persona {
	return Persona{
		VerseReference: key.VerseReference,
		VerseText:      verseText,
		AgeRange:       key.AgeRange,
		Gender:         key.Gender,
		LifeStage:      key.LifeStage,
		Language:       key.Language,
		Style:          style,
	}
}

var ageContext = map[string]string{
	types.AgeTeen:   "a teenager navigating school, friendships, identity questions, and growing independence",
	types.AgeYoung:  "a young adult in college or starting a career, making big decisions about the future",
	types.AgeAdult:  "an adult balancing work, relationships, family, and everyday responsibilities",
	types.AgeSenior: "a senior with decades of life experience, reflecting on legacy and purpose",
}

var lifeStageContext = map[string]string{
	types.LifeStageGeneral:       "everyday life with its normal rhythms, joys, and challenges",
	types.LifeStageNewBeginnings: "an exciting but uncertain new chapter such as a new job, marriage, move, or fresh start",
	types.LifeStageStruggling:    "a difficult season of health, money, relationship, or grief struggles",
	types.LifeStageTransitions:   "a major life transition such as an empty nest, retirement, or career change",
}

const systemPrompt = "You write short personalized Christian devotionals. " +
	"You answer with a single JSON object and nothing else."

// BuildPrompt renders the generation prompt for p. The reply contract is a
// JSON object with reflection, application, prayer and heroImagePrompt.
func BuildPrompt(p Persona) Prompt {
	var b strings.Builder

	age := ageContext[p.AgeRange]
	if age == "" {
		age = "an adult"
	}
	stage := lifeStageContext[p.LifeStage]
	if stage == "" {
		stage = "their current life circumstances"
	}

	fmt.Fprintf(&b, "Write a devotional for someone who is:\n- Age: %s\n- Gender: %s\n- Life stage: %s\n\n", age, p.Gender, stage)
	if p.Style == StyleAcademic {
		b.WriteString("Write in a scholarly theological style with depth and nuance.\n")
	} else {
		b.WriteString("Write in a warm, conversational style like a caring friend.\n")
	}
	if name := LanguageName(p.Language); name != "English" {
		fmt.Fprintf(&b, "Write the entire response in %s.\n", name)
	}
	fmt.Fprintf(&b, "\nVerse: %q (%s)\n\n", p.VerseText, p.VerseReference)
	b.WriteString(`Return only JSON in this shape:
{
  "reflection": "two or three paragraphs on the verse for this reader",
  "application": ["two or three concrete ways to live it out today"],
  "prayer": "a first-person prayer",
  "heroImagePrompt": "one sentence describing an inspirational image"
}`)

	return Prompt{System: systemPrompt, User: b.String()}
}

// LanguageName returns the English name of a BCP 47 language code, or
// "English" when the code does not parse.
func LanguageName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return "English"
	}
	base, _ := tag.Base()
	name := display.English.Languages().Name(base)
	if name == "" {
		return "English"
	}
	return name
}
