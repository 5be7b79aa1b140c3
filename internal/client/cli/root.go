package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/avolkovs/surveydesk/internal/client/session"
)

func (a *App) getStatus() string {
	s := ""
	if st := a.manager.State(); st.User != nil {
		s = st.User.Email + " "
	}
	if mode := a.CurrentMode(); mode != "" {
		s = s + string(mode)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", strings.TrimSpace(s))
	}
	return s
}

// requireAuth gates protected commands behind the access guard: it waits
// out the bootstrap check, then either admits the command or points the
// user at login.
func (a *App) requireAuth(ctx context.Context) bool {
	if a.manager.State().Loading {
		fmt.Println("Checking session...")
	}
	st := a.manager.WaitSettled(ctx)
	switch session.Decide(st) {
	case session.DecisionAllow:
		return true
	default:
		fmt.Println("Please sign in first (login).")
		return false
	}
}

// Root runs the interactive command loop.
func (a *App) Root(ctx context.Context) {
	fmt.Println("Welcome to surveydesk CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Printf("sdesk %s> ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		var err error
		switch cmd {
		case "help":
			a.printHelp()
		case "register":
			err = a.Register(ctx)
		case "login":
			err = a.Login(ctx)
		case "reset-password":
			err = a.ResetPassword(ctx)
		case "exit", "quit":
			fmt.Println("Bye!")
			return
		case "whoami":
			if a.requireAuth(ctx) {
				err = a.Whoami(ctx)
			}
		case "passwd":
			if a.requireAuth(ctx) {
				err = a.UpdatePassword(ctx)
			}
		case "profile":
			if a.requireAuth(ctx) {
				err = a.UpdateProfile(ctx)
			}
		case "logout":
			if a.requireAuth(ctx) {
				err = a.Logout(ctx)
			}
		case "surveys":
			if a.requireAuth(ctx) {
				err = a.ListSurveys(ctx)
			}
		case "survey":
			if a.requireAuth(ctx) {
				err = a.surveyCommand(ctx, args)
			}
		case "responses":
			if a.requireAuth(ctx) {
				err = a.ListResponses(ctx, args)
			}
		case "records":
			if a.requireAuth(ctx) {
				err = a.FetchRecords(ctx, args)
			}
		case "files":
			if a.requireAuth(ctx) {
				err = a.ListFiles(ctx, args)
			}
		case "upload":
			if a.requireAuth(ctx) {
				err = a.UploadFile(ctx, args)
			}
		case "download":
			if a.requireAuth(ctx) {
				err = a.DownloadFile(ctx, args)
			}
		case "rmfile":
			if a.requireAuth(ctx) {
				err = a.DeleteFile(ctx, args)
			}
		case "sign":
			if a.requireAuth(ctx) {
				err = a.SignFile(ctx, args)
			}
		case "ask":
			if a.requireAuth(ctx) {
				err = a.Ask(ctx, args)
			}
		case "suggest":
			if a.requireAuth(ctx) {
				err = a.SuggestQuestions(ctx, args)
			}
		default:
			fmt.Println("Unknown command:", cmd)
		}

		if err != nil {
			fmt.Println("Error:", err)
		}
	}
}

func (a *App) printHelp() {
	st := a.manager.State()
	if session.Decide(st) == session.DecisionAllow {
		fmt.Println("Available commands: whoami, profile, passwd, surveys, survey <new|show|del|pub> [id],")
		fmt.Println("  responses <survey-id>, records <table>, files [folder], upload <local> [remote],")
		fmt.Println("  download <path> <local>, rmfile <path>, sign <path>,")
		fmt.Println("  ask <prompt>, suggest <topic> [count], logout, exit")
	} else {
		fmt.Println("Available commands: register, login, reset-password, exit")
	}
}
