package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/avolkovs/surveydesk/internal/client/models"
)

// ListSurveys prints every survey visible to the current user.
func (a *App) ListSurveys(ctx context.Context) error {
	surveys, err := a.surveys.List(ctx)
	if err != nil {
		return err
	}
	if len(surveys) == 0 {
		fmt.Println("No surveys yet.")
		return nil
	}
	for _, s := range surveys {
		fmt.Printf("%-36s  %-10s  %s\n", s.ID, s.Status, s.Title)
	}
	return nil
}

func (a *App) surveyCommand(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Println("Usage: survey <new|show|del|pub> [id]")
		return nil
	}
	sub := args[0]
	rest := args[1:]

	switch sub {
	case "new":
		return a.createSurvey(ctx)
	case "show":
		if len(rest) == 0 {
			fmt.Println("Usage: survey show <id>")
			return nil
		}
		return a.showSurvey(ctx, rest[0])
	case "del":
		if len(rest) == 0 {
			fmt.Println("Usage: survey del <id>")
			return nil
		}
		return a.surveys.Delete(ctx, rest[0])
	case "pub":
		if len(rest) == 0 {
			fmt.Println("Usage: survey pub <id>")
			return nil
		}
		return a.surveys.Publish(ctx, rest[0])
	default:
		fmt.Println("Unknown subcommand:", sub)
		return nil
	}
}

// createSurvey interactively builds a survey: title, description, then
// questions one at a time until an empty label.
func (a *App) createSurvey(ctx context.Context) error {
	title, err := getSimpleText(a.reader, "Survey title", os.Stdout)
	if err != nil {
		return err
	}
	description, err := getSimpleText(a.reader, "Description (optional)", os.Stdout)
	if err != nil {
		return err
	}

	var questions []models.Question
	for i := 1; ; i++ {
		label, err := getSimpleText(a.reader, fmt.Sprintf("Question %d label (empty to finish)", i), os.Stdout)
		if err != nil {
			return err
		}
		if label == "" {
			break
		}
		qtype, err := getSimpleText(a.reader, "Type (text/choice/rating)", os.Stdout)
		if err != nil {
			return err
		}
		q := models.Question{
			ID:    strconv.Itoa(i),
			Type:  models.QuestionType(qtype),
			Label: label,
		}
		if q.Type == models.QuestionTypeChoice {
			opts, err := getSimpleText(a.reader, "Options (comma-separated)", os.Stdout)
			if err != nil {
				return err
			}
			for _, o := range strings.Split(opts, ",") {
				if o = strings.TrimSpace(o); o != "" {
					q.Options = append(q.Options, o)
				}
			}
		}
		questions = append(questions, q)
	}

	created, err := a.surveys.Create(ctx, models.Survey{
		Title:       title,
		Description: description,
		Status:      models.SurveyStatusDraft,
		Questions:   questions,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Created survey %s\n", created.ID)
	return nil
}

func (a *App) showSurvey(ctx context.Context, id string) error {
	s, err := a.surveys.Get(ctx, id)
	if err != nil {
		return err
	}
	fmt.Printf("%s [%s]\n", s.Title, s.Status)
	if s.Description != "" {
		fmt.Println(s.Description)
	}
	for _, q := range s.Questions {
		req := ""
		if q.Required {
			req = " (required)"
		}
		fmt.Printf("  %s. [%s] %s%s\n", q.ID, q.Type, q.Label, req)
		for _, o := range q.Options {
			fmt.Printf("       - %s\n", o)
		}
	}
	return nil
}

// ListResponses prints the submitted answers for one survey.
func (a *App) ListResponses(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Println("Usage: responses <survey-id>")
		return nil
	}
	responses, err := a.surveys.ListResponses(ctx, args[0])
	if err != nil {
		return err
	}
	if len(responses) == 0 {
		fmt.Println("No responses yet.")
		return nil
	}
	for _, r := range responses {
		fmt.Printf("%s  %s  %d answer(s)\n", r.ID, r.SubmittedAt.Format("2006-01-02 15:04"), len(r.Answers))
	}
	return nil
}
