package main

import (
	"fmt"

	"github.com/fatih/color"
)

var (
	successColor   = color.New(color.FgGreen, color.Bold)
	errorColor     = color.New(color.FgRed, color.Bold)
	infoLabelColor = color.New(color.FgCyan)
	highlightColor = color.New(color.FgMagenta, color.Bold)
)

func printSuccess(msg string) {
	successColor.Printf("✓ %s\n", msg)
}

func printError(msg, detail string) {
	if detail != "" {
		errorColor.Printf("✗ %s: %s\n", msg, detail)
		return
	}
	errorColor.Printf("✗ %s\n", msg)
}

func printInfo(label, value string) {
	infoLabelColor.Printf("%s: ", label)
	fmt.Println(value)
}

func printHighlight(msg string) {
	highlightColor.Println(msg)
}
