package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Ask sends a free-form prompt to the assistant and prints the answer.
func (a *App) Ask(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Println("Usage: ask <prompt>")
		return nil
	}
	answer, err := a.assist.Ask(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Println(answer)
	return nil
}

// SuggestQuestions drafts survey questions for a topic. A trailing number
// sets how many to ask for.
func (a *App) SuggestQuestions(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Println("Usage: suggest <topic> [count]")
		return nil
	}

	count := 0
	topicArgs := args
	if len(args) > 1 {
		if n, err := strconv.Atoi(args[len(args)-1]); err == nil {
			count = n
			topicArgs = args[:len(args)-1]
		}
	}

	questions, err := a.assist.SuggestQuestions(ctx, strings.Join(topicArgs, " "), count)
	if err != nil {
		return err
	}
	if len(questions) == 0 {
		fmt.Println("No suggestions.")
		return nil
	}
	for i, q := range questions {
		fmt.Printf("%d. %s\n", i+1, q)
	}
	return nil
}
