package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/sqweek/dialog"
)

// resolveTour returns path if it exists, otherwise asks for a tour file with
// a native dialog.
func resolveTour(path string) (string, error) {
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	picked, err := dialog.File().
		Filter("Tour files", "yaml", "yml").
		Filter("All Files", "*").
		Title("Open tour").
		Load()
	if errors.Is(err, dialog.ErrCancelled) {
		return "", fmt.Errorf("no tour at %s and none selected", path)
	}
	if err != nil {
		return "", fmt.Errorf("tour dialog: %w", err)
	}
	return picked, nil
}
