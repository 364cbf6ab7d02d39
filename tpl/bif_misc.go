package tpl

import (
	"context"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/ncruces/go-strftime"
)

// now is replaced in tests.
var now = time.Now

// nineDigits returns a random number of exactly nine digits.
func nineDigits() string {
	return strconv.FormatInt(100_000_000+rand.Int64N(900_000_000), 10)
}

// body returns the trimmed src, evaluated when it contains blocks.
func (b *bif) body(ctx context.Context) string {
	return b.parseIf(ctx, strings.TrimSpace(b.src), false)
}

// {:date; :} prints the Unix time in seconds; {:date; %Y-%m-%d :} prints the
// UTC time in the given strftime format.
func evalDate(ctx context.Context, b *bif) error {
	b.code = b.body(ctx)

	t := now().UTC()

	if b.code == "" {
		b.out = strconv.FormatInt(t.Unix(), 10)
	} else {
		b.out = strftime.Format(b.code, t)
	}

	return nil
}

// {:hash; text :} prints the md5 hex digest of text, or of a random number
// when text is empty.
func evalHash(ctx context.Context, b *bif) error {
	b.code = b.body(ctx)

	if b.code == "" {
		b.out = md5Hex(nineDigits())
	} else {
		b.out = md5Hex(b.code)
	}

	return nil
}

// {:rand; :} prints a random nine-digit number; {:rand; 1..6 :} prints one
// from the inclusive range.
func evalRand(ctx context.Context, b *bif) error {
	b.code = b.body(ctx)

	if b.code == "" {
		b.out = nineDigits()

		return nil
	}

	args := strings.Fields(strings.ReplaceAll(b.code, "..", " "))

	if len(args) == 0 {
		return fail(152, "arguments not found")
	}

	from, err := strconv.ParseInt(args[0], 10, 32)
	if err != nil {
		return fail(151, "argument is not a number")
	}

	if len(args) == 1 {
		return fail(154, "arguments not found")
	}

	to, err := strconv.ParseInt(args[1], 10, 32)
	if err != nil {
		return fail(153, "argument is not a number")
	}

	if from > to {
		return fail(155, "from > to")
	}

	b.out = strconv.FormatInt(from+rand.Int64N(to-from+1), 10)

	return nil
}
