package catalog

// Kind classifies a learning item.
type Kind string

const (
	KindNote   Kind = "note"
	KindModule Kind = "module"
	KindQuiz   Kind = "quiz"
	KindVideo  Kind = "video"
	KindPYQ    Kind = "pyq"  // previous-year questions
	KindTest   Kind = "test" // full-length mock test
)

// KindDisplayName returns a human-readable name for a kind.
func KindDisplayName(k Kind) string {
	switch k {
	case KindNote:
		return "Notes"
	case KindModule:
		return "Module"
	case KindQuiz:
		return "Quiz"
	case KindVideo:
		return "Video"
	case KindPYQ:
		return "Previous-Year Questions"
	case KindTest:
		return "Mock Test"
	default:
		return string(k)
	}
}

// Difficulty is an ordered difficulty level.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// AllDifficulties returns the difficulty levels in ascending order.
func AllDifficulties() []Difficulty {
	return []Difficulty{DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced}
}

// Rank returns the position of d in the difficulty order, or -1 if d is unknown.
func (d Difficulty) Rank() int {
	switch d {
	case DifficultyBeginner:
		return 0
	case DifficultyIntermediate:
		return 1
	case DifficultyAdvanced:
		return 2
	default:
		return -1
	}
}

// Valid reports whether d is a known difficulty.
func (d Difficulty) Valid() bool {
	return d.Rank() >= 0
}

// Less reports whether d is easier than other.
func (d Difficulty) Less(other Difficulty) bool {
	return d.Rank() < other.Rank()
}

// Item is an immutable catalog entry.
type Item struct {
	ID               string     `yaml:"id" json:"id"`
	Title            string     `yaml:"title,omitempty" json:"title,omitempty"`
	Kind             Kind       `yaml:"kind" json:"kind"`
	Subject          string     `yaml:"subject" json:"subject"`
	Topic            string     `yaml:"topic" json:"topic"`
	Difficulty       Difficulty `yaml:"difficulty" json:"difficulty"`
	EstimatedMinutes int        `yaml:"estimated_minutes" json:"estimated_minutes"`
	Prerequisites    []string   `yaml:"prerequisites,omitempty" json:"prerequisites,omitempty"`
	Tags             []string   `yaml:"tags,omitempty" json:"tags,omitempty"`
}

// DisplayName returns the title, falling back to the topic and then the ID.
func (it Item) DisplayName() string {
	switch {
	case it.Title != "":
		return it.Title
	case it.Topic != "":
		return it.Topic
	default:
		return it.ID
	}
}

// HasTag reports whether the item carries tag.
func (it Item) HasTag(tag string) bool {
	for _, t := range it.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
