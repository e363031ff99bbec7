package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/JaimeStill/promptvault/internal/prompts"
)

var (
	heading = color.New(color.FgCyan, color.Bold)
	faint   = color.New(color.Faint)
	success = color.New(color.FgGreen)
	caution = color.New(color.FgYellow)
	failure = color.New(color.FgRed, color.Bold)
)

func warn(format string, args ...any) {
	caution.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
}

func printPrompt(p prompts.Prompt) {
	marker := " "
	if p.IsFavorite {
		marker = color.YellowString("*")
	}
	fmt.Printf("%s %s  %s\n", marker, heading.Sprint(p.Title), faint.Sprint(p.ID))
	fmt.Printf("  %s | %s", p.Model, p.Category)
	if len(p.Tags) > 0 {
		fmt.Printf(" | %s", strings.Join(p.Tags, ", "))
	}
	fmt.Println()
}
