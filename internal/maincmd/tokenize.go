package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/rox-lang/rox/lang/scanner"
	"github.com/rox-lang/rox/lang/token"
)

func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return TokenizeFiles(ctx, stdio, args...)
}

// TokenizeFiles scans each of files in turn, printing one line per token to
// stdio.Stdout. A scan error is reported on stdio.Stderr and does not stop
// scanning of the remaining files; TokenizeFiles returns the first error
// encountered, if any.
func TokenizeFiles(_ context.Context, stdio mainer.Stdio, files ...string) error {
	var firstErr error
	for _, path := range files {
		src, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(stdio.Stderr, "%s\n", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		sc := scanner.New(src)
		for {
			tok := sc.Scan()
			if tok.Kind == token.ILLEGAL {
				err := fmt.Errorf("%s:%d: %s", path, tok.Line, tok.Lexeme)
				fmt.Fprintf(stdio.Stderr, "%s\n", err)
				if firstErr == nil {
					firstErr = err
				}
				continue
			}

			fmt.Fprintf(stdio.Stdout, "%d: %s\n", tok.Line, tok)
			if tok.Kind == token.EOF {
				break
			}
		}
	}
	return firstErr
}
