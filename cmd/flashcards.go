package cmd

import (
	"bufio"
	"strings"

	"github.com/spf13/cobra"

	"github.com/afuente/examly/internal/flashcards"
)

var flashcardsCmd = &cobra.Command{
	Use:   "flashcards",
	Short: "Study flashcards for the active exam",
	RunE:  runFlashcards,
}

func init() {
	flashcardsCmd.Flags().Int("count", 100, "Number of flashcards to fetch")
	flashcardsCmd.Flags().String("category", "", "Show only cards in this category")
	flashcardsCmd.Flags().Bool("categories", false, "List available categories and exit")
}

func runFlashcards(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	count, _ := cmd.Flags().GetInt("count")
	cards, err := a.cards.Fetch(cmd.Context(), a.exam, count)
	if err != nil {
		return err
	}
	if len(cards) == 0 {
		cmd.Printf("No flashcards available for %s yet.\n", a.exam.DisplayName())
		return nil
	}

	if list, _ := cmd.Flags().GetBool("categories"); list {
		for _, c := range flashcards.Categories(cards) {
			cmd.Println(c)
		}
		return nil
	}

	category, _ := cmd.Flags().GetString("category")
	cards = flashcards.FilterByCategory(cards, category)
	if len(cards) == 0 {
		cmd.Printf("No flashcards in category %q.\n", category)
		return nil
	}

	deck := flashcards.NewDeck(cards)
	cmd.Printf("Flashcards (%s): %d cards. Enter to reveal, n/p to move, q to quit.\n", a.exam.DisplayName(), deck.Len())

	reader := bufio.NewScanner(cmd.InOrStdin())
	revealed := false
	printCard(cmd, deck, revealed)
	for reader.Scan() {
		switch strings.TrimSpace(strings.ToLower(reader.Text())) {
		case "q", "quit":
			return nil
		case "":
			// Enter reveals first, then advances.
			if revealed {
				deck.Next()
				revealed = false
			} else {
				revealed = true
			}
		case "n", "next":
			deck.Next()
			revealed = false
		case "p", "prev":
			deck.Prev()
			revealed = false
		default:
			continue
		}
		printCard(cmd, deck, revealed)
	}
	return nil
}

func printCard(cmd *cobra.Command, deck *flashcards.Deck, revealed bool) {
	card := deck.Current()
	cmd.Printf("\n--- Card %d of %d", deck.Pos()+1, deck.Len())
	if card.Category != "" {
		cmd.Printf(" (%s)", card.Category)
	}
	cmd.Println(" ---")
	cmd.Println(card.Question)
	if revealed {
		cmd.Printf("\n%s\n", card.Answer)
	}
}
