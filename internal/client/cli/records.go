package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/avolkovs/surveydesk/internal/client/gateway"
)

// FetchRecords dumps rows of an arbitrary table as JSON lines. Handy for
// poking at data the survey commands don't cover.
func (a *App) FetchRecords(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Println("Usage: records <table>")
		return nil
	}

	rows, err := a.records.Fetch(ctx, args[0], gateway.Query{Limit: 50})
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("No rows.")
		return nil
	}
	for _, row := range rows {
		b, err := json.Marshal(row)
		if err != nil {
			return err
		}
		fmt.Println(string(b))
	}
	return nil
}
