package app

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with
// a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a
// lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Pull(ctx context.Context) error
	Attendance(ctx context.Context) error
	Assign(ctx context.Context) error
	Unassign(ctx context.Context) error
	Harvest(ctx context.Context) error
	Worker(ctx context.Context) error
	TaskLog(ctx context.Context) error
	Pending(ctx context.Context) error
	Sync(ctx context.Context) error
}

// runREPL reads a line from the provided scanner, parses the first token as
// the command, and dispatches to methods on 'a'. Unknown commands are
// reported back to the user. The loop exits on scanner EOF or when the user
// types "exit" or "quit".
//
// Capture commands work offline against the local mirror; login, pull and
// sync need the server. Errors from command handlers are ignored here, the
// handlers log their own errors.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("fieldsync %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: pull, attendance, assign, unassign, harvest, worker, tasklog, pending, sync, exit")
			} else {
				printlnFn("Available commands: login, attendance, assign, unassign, harvest, worker, tasklog, pending, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "pull":
			_ = a.Pull(ctx)

		case "attendance":
			_ = a.Attendance(ctx)

		case "assign":
			_ = a.Assign(ctx)

		case "unassign":
			_ = a.Unassign(ctx)

		case "harvest":
			_ = a.Harvest(ctx)

		case "worker":
			_ = a.Worker(ctx)

		case "tasklog":
			_ = a.TaskLog(ctx)

		case "pending":
			_ = a.Pending(ctx)

		case "sync":
			_ = a.Sync(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func (a *App) getStatus() string {
	if a.isLoggedIn() {
		return fmt.Sprintf("(%s)", a.config.DeviceCode)
	}
	return "(offline)"
}

func (a *App) runREPL(ctx context.Context) {
	printlnFn("FieldSync device console (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}
