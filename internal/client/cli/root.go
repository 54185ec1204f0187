package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

func (a *App) getStatus() string {
	ctx := context.Background()
	if user := a.session.User(ctx); user != nil {
		return fmt.Sprintf("(%s)", user.Username)
	}
	return "(anonymous)"
}

// Root runs the read-eval-print loop. Numeric arguments refer to positions
// in the most recently printed list, so "search berlin" followed by "add 1"
// favorites the first hit.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to WeatherDeck CLI (type 'help' for commands)")

	for {
		fmt.Fprintf(a.out, "wd %s> ", a.getStatus())
		line, err := a.reader.ReadString('\n')
		if err != nil {
			if !errors.Is(err, io.EOF) {
				a.log.Error(ctx, "input read failed", "error", err)
			}
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn(ctx) {
				fmt.Fprintln(a.out, "Available commands: search <city>, favorites, add <n>, remove <n>, toggle <n>, current <n>, forecast <n>, units, usage, reset, whoami, logout, exit")
			} else {
				fmt.Fprintln(a.out, "Available commands: search <city>, favorites, add <n>, remove <n>, toggle <n>, current <n>, forecast <n>, units, usage, reset, register, login, exit")
			}

		case "register":
			a.Register(ctx)
		case "login":
			a.Login(ctx)
		case "logout":
			a.Logout(ctx)
		case "whoami":
			a.WhoAmI(ctx)

		case "s", "search":
			if len(args) == 0 {
				fmt.Fprintln(a.out, "Usage: search <city name>")
				continue
			}
			a.Search(ctx, strings.Join(args, " "))
		case "f", "favorites":
			a.Favorites(ctx)
		case "add":
			a.Add(ctx, args)
		case "remove", "rm":
			a.Remove(ctx, args)
		case "toggle":
			a.Toggle(ctx, args)

		case "current", "now":
			a.Current(ctx, args)
		case "forecast":
			a.Forecast(ctx, args)

		case "units":
			a.Units(ctx)
		case "usage":
			a.Usage(ctx)
		case "reset":
			a.Reset(ctx)

		case "exit", "quit":
			fmt.Fprintln(a.out, "Bye!")
			return

		default:
			fmt.Fprintln(a.out, "Unknown command:", cmd)
		}
	}
}

// pick resolves a 1-based index argument against the last printed list.
func (a *App) pick(args []string) (int, bool) {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: <command> <n>, where n refers to the last printed list")
		return 0, false
	}
	var n int
	if _, err := fmt.Sscanf(args[0], "%d", &n); err != nil || n < 1 || n > len(a.shown) {
		fmt.Fprintf(a.out, "No entry %q in the last printed list (1-%d)\n", args[0], len(a.shown))
		return 0, false
	}
	return n - 1, true
}
