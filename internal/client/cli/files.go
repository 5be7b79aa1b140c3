package cli

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
)

// ListFiles prints the contents of the configured bucket, optionally scoped
// to a folder.
func (a *App) ListFiles(ctx context.Context, args []string) error {
	folder := ""
	if len(args) > 0 {
		folder = args[0]
	}
	files, err := a.files.List(ctx, folder)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("No files.")
		return nil
	}
	for _, f := range files {
		fmt.Printf("%10d  %s\n", f.Size, f.Name)
	}
	return nil
}

// UploadFile sends a local file to the bucket. Without an explicit remote
// path the backend-visible name is generated, keeping the local extension.
func (a *App) UploadFile(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Println("Usage: upload <local> [remote]")
		return nil
	}
	local := args[0]
	remote := ""
	if len(args) > 1 {
		remote = args[1]
	}

	data, err := os.ReadFile(local)
	if err != nil {
		return err
	}
	contentType := mime.TypeByExtension(filepath.Ext(local))

	up, err := a.files.Upload(ctx, remote, filepath.Base(local), data, contentType)
	if err != nil {
		return err
	}
	fmt.Printf("Uploaded as %s\n", up.Path)
	if up.PublicURL != "" {
		fmt.Println(up.PublicURL)
	}
	return nil
}

// DownloadFile fetches a bucket object into a local file.
func (a *App) DownloadFile(ctx context.Context, args []string) error {
	if len(args) < 2 {
		fmt.Println("Usage: download <path> <local>")
		return nil
	}

	data, err := a.files.Download(ctx, args[0])
	if err != nil {
		return err
	}
	if err := os.WriteFile(args[1], data, 0o600); err != nil {
		return err
	}
	fmt.Printf("Saved %d bytes to %s\n", len(data), args[1])
	return nil
}

// DeleteFile removes a bucket object.
func (a *App) DeleteFile(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Println("Usage: rmfile <path>")
		return nil
	}
	if err := a.files.Delete(ctx, args[0]); err != nil {
		return err
	}
	fmt.Println("Deleted.")
	return nil
}

// SignFile prints a short-lived signed URL for a bucket object.
func (a *App) SignFile(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Println("Usage: sign <path>")
		return nil
	}
	u, err := a.files.SignedURL(ctx, args[0], 0)
	if err != nil {
		return err
	}
	fmt.Println(u)
	return nil
}
