package flashcards

import "sort"

// Card is one record from the flashcard source. RelatedQuestionID may be
// null upstream, which leaves the field empty.
type Card struct {
	ID                string `json:"id"`
	Question          string `json:"question"`
	Answer            string `json:"answer"`
	Category          string `json:"category"`
	CreatedAt         string `json:"created_at"`
	RelatedQuestionID string `json:"related_question_id"`
}

// Categories returns the distinct categories across cards, sorted.
func Categories(cards []Card) []string {
	seen := make(map[string]struct{})
	var cats []string
	for _, c := range cards {
		if c.Category == "" {
			continue
		}
		if _, ok := seen[c.Category]; ok {
			continue
		}
		seen[c.Category] = struct{}{}
		cats = append(cats, c.Category)
	}
	sort.Strings(cats)
	return cats
}

// FilterByCategory returns the cards matching category. The source has no
// category parameter, so filtering happens after the fetch. An empty
// category returns all cards.
func FilterByCategory(cards []Card, category string) []Card {
	if category == "" {
		return cards
	}
	var out []Card
	for _, c := range cards {
		if c.Category == category {
			out = append(out, c)
		}
	}
	return out
}
