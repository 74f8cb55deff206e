package main

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// readLine prompts and reads a trimmed line from stdin.
func (a *app) readLine(prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := a.in.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readPassword prompts for a password without echoing. When stdin is not
// a terminal (pipes, IDE consoles) it falls back to a plain line read.
func (a *app) readPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return a.readLine(prompt)
	}

	fmt.Print(prompt)
	raw, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
