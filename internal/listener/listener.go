// Package listener owns the interactive terminal: a single readline
// instance plus helpers for printing asynchronous mission updates above
// the prompt without mangling current input.
package listener

import (
	"fmt"
	"strings"
	"sync"

	"github.com/chzyer/readline"
)

var rl *readline.Instance
var mu sync.Mutex
var holdAsync bool
var heldLines []string

func Init() error {
	var err error
	rl, err = readline.NewEx(&readline.Config{
		Prompt:          "> ",
		InterruptPrompt: "",
		EOFPrompt:       "",
	})
	return err
}

// Close shuts the readline instance down and unblocks any pending
// GetInput. Safe to call more than once.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if rl != nil {
		_ = rl.Close()
		rl = nil
	}
}

func printAboveUnlocked(s string) {
	if rl == nil {
		fmt.Println(s)
		return
	}
	_, _ = rl.Write([]byte("\r\n" + s + "\r\n"))
	rl.Refresh()
}

func PrintAbove(s string) {
	mu.Lock()
	defer mu.Unlock()
	printAboveUnlocked(s)
}

// GetInput blocks for one line of input. Returns the empty string once
// the listener is closed.
func GetInput() string {
	mu.Lock()
	r := rl
	mu.Unlock()
	if r == nil {
		return ""
	}
	line, err := r.Readline()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(line)
}

// AsyncPrintln prints a line above the prompt, or holds it while a
// confirmation dialog is active.
func AsyncPrintln(s string) {
	mu.Lock()
	defer mu.Unlock()
	if holdAsync {
		heldLines = append(heldLines, s)
		return
	}
	printAboveUnlocked(s)
}

// AskYesNo blocks on a y/n answer; async output is held until the dialog
// is resolved.
func AskYesNo(question string) bool {
	mu.Lock()
	holdAsync = true
	mu.Unlock()
	defer func() {
		mu.Lock()
		holdAsync = false
		for _, s := range heldLines {
			printAboveUnlocked(s)
		}
		heldLines = nil
		mu.Unlock()
	}()

	PrintAbove(question + " [y/n]")
	for {
		ans := strings.ToLower(GetInput())
		if ans == "y" || ans == "yes" {
			return true
		}
		if ans == "n" || ans == "no" {
			return false
		}
		PrintAbove("Please answer y/n.")
	}
}
