package questions

import "strings"

// Question is one record from the question source.
type Question struct {
	ID            string `json:"id"`
	Text          string `json:"question"`
	OptionA       string `json:"option_A"`
	OptionB       string `json:"option_B"`
	OptionC       string `json:"option_C"`
	OptionD       string `json:"option_D"`
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation"`
	// Tags is a comma-space separated category list, e.g. "Quality, Scope".
	Tags string `json:"tags"`
}

// Option is a labeled answer choice.
type Option struct {
	Letter string
	Text   string
}

// Options returns the four answer choices in A..D order.
func (q Question) Options() []Option {
	return []Option{
		{Letter: "A", Text: q.OptionA},
		{Letter: "B", Text: q.OptionB},
		{Letter: "C", Text: q.OptionC},
		{Letter: "D", Text: q.OptionD},
	}
}

// IsCorrect reports whether choice matches the correct option letter.
func (q Question) IsCorrect(choice string) bool {
	c := strings.ToUpper(strings.TrimSpace(choice))
	return c != "" && c == strings.ToUpper(strings.TrimSpace(q.CorrectAnswer))
}

// TagList splits the tag string into individual category labels.
func (q Question) TagList() []string {
	if q.Tags == "" {
		return nil
	}
	parts := strings.Split(q.Tags, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
