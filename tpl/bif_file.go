package tpl

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/readahead"

	"github.com/ardnew/neutral/value"
)

// maxReadBuffer caps the read-ahead buffer of a file read.
const maxReadBuffer = 4 << 10

// readFile reads a whole file through a single read-ahead buffer of at most
// maxReadBuffer bytes.
func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	size := maxReadBuffer
	if fi, err := f.Stat(); err == nil && fi.Size() < maxReadBuffer {
		size = max(int(fi.Size()), 1)
	}

	ra, err := readahead.NewReaderSize(f, 1, size)
	if err != nil {
		return nil, err
	}
	defer ra.Close()

	return io.ReadAll(ra)
}

// readText returns the contents of path, or the empty string when it cannot
// be read.
func (b *bif) readText(ctx context.Context, path string) string {
	data, err := readFile(path)
	if err != nil {
		b.st.logger.TraceContext(ctx, "read failed",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)

		return ""
	}

	b.st.logger.TraceContext(ctx, "read file",
		slog.String("path", path),
		slog.Int("bytes", len(data)),
	)

	return string(data)
}

// resolveFile turns the code of a file block into a path. A leading "#"
// makes the path relative to the directory of the current file. It returns
// the canonical path, or ok false when the file does not exist and is not
// required.
func (b *bif) resolveFile(
	ctx context.Context,
	insecureCode, missingCode int,
) (string, bool, error) {
	path := b.code

	if strings.Contains(path, BifOpen) {
		if !containsAllow(path) {
			return "", false, fail(insecureCode, "insecure file name")
		}

		path = b.parseChild(ctx, b.code, false)
	}

	if rest, found := strings.CutPrefix(path, "#"); found {
		path = b.fr.dir + rest
	}

	b.file = path

	if _, err := os.Stat(path); err != nil {
		if b.flag("require") {
			return "", false, fail(missingCode, "file not found")
		}

		return "", false, nil
	}

	return canonicalPath(path), true, nil
}

// canonicalPath returns the absolute path with symlinks resolved, or as much
// of that as the file system allows.
func canonicalPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}

	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}

	return abs
}

// {:include; {:flg; require safe noparse :} >> path :} evaluates a file in
// place. The negated form skips files this frame already included.
func evalInclude(ctx context.Context, b *bif) error {
	b.extract(ctx, true)

	canonical, ok, err := b.resolveFile(ctx, 138, 139)
	if err != nil || !ok {
		return err
	}

	b.dir = filepath.Dir(b.file)

	if b.has(modNegate) && b.fr.includes.has(canonical) {
		return nil
	}

	if b.flag("safe") {
		b.out = sanitizeBifs(encodeSafe(b.readText(ctx, b.file)))

		return nil
	}

	if b.flag("noparse") {
		b.out = b.readText(ctx, b.file)

		return nil
	}

	b.fr.includes = b.fr.includes.add(canonical)

	src := b.readText(ctx, b.file)
	if strings.Contains(b.st.comments, "remove") {
		src = RemoveComments(src)
	}

	b.out = b.parseChild(ctx, src, true)

	return nil
}

// loadJSON reads and decodes a JSON file, evaluating any blocks in it first
// unless the noparse flag is set.
func (b *bif) loadJSON(ctx context.Context) (*value.Value, error) {
	src := b.readText(ctx, b.file)

	if !b.flag("noparse") {
		src = b.parseIf(ctx, src, false)
	}

	return value.Parse([]byte(src))
}

// {:data; path :} merges the data region of a JSON file into the scope-local
// data, read back with the local:: prefix.
func evalData(ctx context.Context, b *bif) error {
	b.extract(ctx, true)

	canonical, ok, err := b.resolveFile(ctx, 114, 115)
	if err != nil || !ok {
		return err
	}

	if b.has(modNegate) && b.fr.datas.has(canonical) {
		return nil
	}

	b.fr.datas = b.fr.datas.add(canonical)

	doc, err := b.loadJSON(ctx)
	if err != nil {
		return fail(116, "not a valid JSON file")
	}

	b.ownScope().SetPath(keyData).Merge(doc.Field(keyData))
	b.out = Unprintable

	return nil
}

// {:locale; path :} or {:locale; {:flg; inline :} >> json :} merges
// translations into the scope locale.
func evalLocale(ctx context.Context, b *bif) error {
	b.extract(ctx, true)

	if b.flag("inline") {
		b.code = b.parseIf(ctx, b.code, false)

		doc, err := value.Parse([]byte(b.code))
		if err != nil {
			return fail(142, "not a valid JSON string")
		}

		b.ownScope().SetPath(keyLocale).Merge(doc)

		return nil
	}

	canonical, ok, err := b.resolveFile(ctx, 143, 144)
	if err != nil || !ok {
		return err
	}

	if b.has(modNegate) && b.fr.locales.has(canonical) {
		return nil
	}

	b.fr.locales = b.fr.locales.add(canonical)

	doc, err := b.loadJSON(ctx)
	if err != nil {
		return fail(145, "not a valid JSON file")
	}

	b.ownScope().SetPath(keyLocale).Merge(doc)
	b.out = Unprintable

	return nil
}
