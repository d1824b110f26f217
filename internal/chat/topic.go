// Package chat implements the rule-based dialogue engine: input
// normalization, keyword intent matching, templated reply generation,
// and per-session conversation state.
package chat

// Topic is a classified conversational intent.
type Topic int

const (
	TopicUnknown Topic = iota
	TopicInappropriate
	TopicGreeting
	TopicFarewell
	TopicName
	TopicHometown
	TopicLocation
	TopicEducation
	TopicInterests
	TopicLanguages
	TopicSkills
	TopicTools
	TopicProjects
	TopicContact
	TopicExperience
	TopicCertifications
	TopicTrading
	TopicHelp
)

// String returns the topic label used in logs and metrics.
func (t Topic) String() string {
	switch t {
	case TopicInappropriate:
		return "inappropriate"
	case TopicGreeting:
		return "greeting"
	case TopicFarewell:
		return "farewell"
	case TopicName:
		return "name"
	case TopicHometown:
		return "hometown"
	case TopicLocation:
		return "location"
	case TopicEducation:
		return "education"
	case TopicInterests:
		return "interests"
	case TopicLanguages:
		return "languages"
	case TopicSkills:
		return "skills"
	case TopicTools:
		return "tools"
	case TopicProjects:
		return "projects"
	case TopicContact:
		return "contact"
	case TopicExperience:
		return "experience"
	case TopicCertifications:
		return "certifications"
	case TopicTrading:
		return "trading"
	case TopicHelp:
		return "help"
	default:
		return "unknown"
	}
}

// greetingWords and farewellWords short-circuit intent matching.
// Matched as whole words so "this" never reads as "hi".
var greetingWords = []string{"hi", "hello", "hey", "greetings", "howdy"}

var farewellWords = []string{"bye", "goodbye", "see you", "later", "farewell"}

// inappropriateWords are checked before everything else.
var inappropriateWords = []string{"fuck", "shit", "bitch", "asshole"}

// trigger binds one keyword to a topic. The table order is the tie-break
// order: the first exact substring hit wins, and fuzzy ties keep the
// earliest entry.
type trigger struct {
	keyword string
	topic   Topic
}

// triggerTable lists every intent keyword in priority order.
// Order must stay stable; matching depends on it.
var triggerTable = []trigger{
	{"name", TopicName},

	{"from", TopicHometown},
	{"hometown", TopicHometown},
	{"grew up", TopicHometown},

	{"live", TopicLocation},
	{"located", TopicLocation},
	{"current location", TopicLocation},
	{"based", TopicLocation},

	{"education", TopicEducation},
	{"study", TopicEducation},
	{"school", TopicEducation},
	{"college", TopicEducation},
	{"university", TopicEducation},
	{"degree", TopicEducation},

	{"interest", TopicInterests},
	{"hobby", TopicInterests},
	{"passion", TopicInterests},

	{"language", TopicLanguages},
	{"speak", TopicLanguages},
	{"talk", TopicLanguages},

	{"skill", TopicSkills},
	{"ability", TopicSkills},
	{"expertise", TopicSkills},
	{"proficient", TopicSkills},

	{"tool", TopicTools},
	{"software", TopicTools},
	{"platform", TopicTools},
	{"technology", TopicTools},

	{"project", TopicProjects},
	{"work", TopicProjects},
	{"exquio", TopicProjects},

	{"contact", TopicContact},
	{"reach", TopicContact},
	{"connect", TopicContact},
	{"linkedin", TopicContact},
	{"github", TopicContact},

	{"experience", TopicExperience},
	{"job", TopicExperience},
	{"company", TopicExperience},
	{"intern", TopicExperience},

	{"certification", TopicCertifications},
	{"certificate", TopicCertifications},
	{"course", TopicCertifications},

	{"trading", TopicTrading},
	{"trader", TopicTrading},
	{"stock", TopicTrading},
	{"market", TopicTrading},

	{"help", TopicHelp},
}

// TriggerKeywords returns every intent keyword in table order.
// This is the fuzzy-correction vocabulary for the normalizer.
func TriggerKeywords() []string {
	keywords := make([]string, 0, len(triggerTable))
	for _, tr := range triggerTable {
		keywords = append(keywords, tr.keyword)
	}
	return keywords
}

// DefaultSpellings maps known misspellings and proper nouns to their
// canonical forms. Kept separate from the trigger table so spelling
// correction never rewrites a word into an unrelated topic keyword.
func DefaultSpellings() map[string]string {
	return map[string]string{
		"exquio":   "exquio",
		"exqio":    "exquio",
		"sayees":   "sayees",
		"sayes":    "sayees",
		"linkedin": "linkedin",
		"linkdin":  "linkedin",
		"github":   "github",
		"gihub":    "github",
	}
}
