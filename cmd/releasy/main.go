// Command releasy bumps semantic versions, tags releases, writes changelogs
// and deploys them to configured targets.
//
// Typical usage:
//
//	releasy init                          # scaffold config/, scripts/, status/ and logs/
//	releasy release                       # build, test, tag and write CHANGELOG.md
//	releasy deploy 1.2.0 --env staging    # run hooks and the deploy script
//	releasy rollback --env staging        # redeploy the previous version
//	releasy status                        # print persisted deployment state
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/chokrifaysal/releasy/errors"
	fsb "github.com/chokrifaysal/releasy/fs/billy"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command line in args and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := newApp(stdout, stderr, fsb.NewBaseOSFS())
	defer a.close()

	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "%s %s\n", red("Error:"), err)
		return exitCode(err)
	}
	return 0
}

// exitCode maps an error to the process exit status: 2 for bad input, 1 for
// everything else.
func exitCode(err error) int {
	switch errors.CodeOf(err) {
	case errors.CodeFormat, errors.CodeInvalidConfig:
		return 2
	default:
		return 1
	}
}
