package cli

import (
	"context"
	"fmt"
	"os"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword
var getMetadata = GetMetadata

// Register prompts for an email, password and optional profile metadata and
// creates a new account through the session manager.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	metadata, err := getMetadata(a.reader, os.Stdout)
	if err != nil {
		return err
	}

	if _, err := a.manager.SignUp(ctx, email, password, metadata); err != nil {
		return err
	}

	fmt.Println("Account created.")
	return nil
}

// Login prompts for credentials and signs in. On success the token is
// persisted by the session manager, so the next run starts authenticated.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	if _, err := a.manager.SignIn(ctx, email, password); err != nil {
		return err
	}

	fmt.Println("Signed in.")
	return nil
}

// Logout signs the current session out. Local state is cleared even when the
// remote call fails.
func (a *App) Logout(ctx context.Context) error {
	if err := a.manager.SignOut(ctx); err != nil {
		return err
	}
	if msg := a.manager.State().Error; msg != "" {
		fmt.Printf("Signed out locally (remote sign-out failed: %s)\n", msg)
		return nil
	}
	fmt.Println("Signed out.")
	return nil
}

// Whoami prints the authenticated user's profile.
func (a *App) Whoami(ctx context.Context) error {
	st := a.manager.State()
	if st.User == nil {
		fmt.Println("Not signed in.")
		return nil
	}
	fmt.Printf("id:    %s\nemail: %s\n", st.User.ID, st.User.Email)
	for k, v := range st.User.Metadata {
		fmt.Printf("%s: %v\n", k, v)
	}
	return nil
}

// ResetPassword asks the backend to send a reset email. Works without being
// signed in.
func (a *App) ResetPassword(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	if _, err := a.manager.ResetPassword(ctx, email); err != nil {
		return err
	}

	fmt.Println("Reset email sent, check your inbox.")
	return nil
}

// UpdatePassword changes the signed-in user's password.
func (a *App) UpdatePassword(ctx context.Context) error {
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	if _, err := a.manager.UpdatePassword(ctx, password); err != nil {
		return err
	}

	fmt.Println("Password updated.")
	return nil
}

// UpdateProfile patches the signed-in user's metadata.
func (a *App) UpdateProfile(ctx context.Context) error {
	metadata, err := getMetadata(a.reader, os.Stdout)
	if err != nil {
		return err
	}
	if metadata == nil {
		fmt.Println("Nothing to update.")
		return nil
	}

	if _, err := a.manager.UpdateProfile(ctx, map[string]any{"metadata": metadata}); err != nil {
		return err
	}

	fmt.Println("Profile updated.")
	return nil
}
