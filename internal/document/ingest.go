package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/example/seo-detector/internal/log"
)

const chunkSize = 32 * 1024

var (
	textNormalizer = strings.NewReplacer("\r\n", "", "\n", "", "\r", "", "\t", "", "  ", "")
	tagNormalizer  = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ")
)

// Normalize strips line breaks, tabs and runs of double spaces from the text
// between tags. Inside a tag, line breaks and tabs become a single space so
// that a tag name stays separated from its first attribute.
func Normalize(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))

	for s != "" {
		start := tagStart(s)
		if start < 0 {
			sb.WriteString(textNormalizer.Replace(s))

			break
		}
		sb.WriteString(textNormalizer.Replace(s[:start]))

		end := tagEnd(s, start)
		sb.WriteString(tagNormalizer.Replace(s[start:end]))
		s = s[end:]
	}

	return sb.String()
}

// tagStart returns the index of the next '<' that opens a tag, comment or
// directive, or -1.
func tagStart(s string) int {
	for i := 0; i+1 < len(s); i++ {
		if s[i] != '<' {
			continue
		}
		c := s[i+1]
		if c == '/' || c == '!' || c == '?' || (c|0x20 >= 'a' && c|0x20 <= 'z') {
			return i
		}
	}

	return -1
}

// tagEnd returns the index just past the '>' closing the tag that starts at
// start, skipping quoted attribute values. An unterminated tag runs to the
// end of s.
func tagEnd(s string, start int) int {
	var quote byte
	afterEquals := false

	for i := start + 1; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '>':
			return i + 1
		case (c == '"' || c == '\'') && afterEquals:
			quote = c
		}

		switch c {
		case ' ', '\t', '\r', '\n':
		default:
			afterEquals = quote == 0 && c == '='
		}
	}

	return len(s)
}

// Collect reads r chunk by chunk until EOF and returns the concatenated
// content. The context is checked between chunks; a cancelled context or a
// read error discards everything received so far.
func Collect(ctx context.Context, r io.Reader) (string, error) {
	var sb strings.Builder
	buf := make([]byte, chunkSize)
	chunks := 0

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		n, err := r.Read(buf)
		if n > 0 {
			sb.Write(buf[:n])
			chunks++
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read document: %w", err)
		}
	}

	log.WithContext(ctx).DebugContext(ctx, "document received",
		slog.String("size", humanize.Bytes(uint64(sb.Len()))),
		slog.Int("chunks", chunks),
	)

	return sb.String(), nil
}

// Load collects r, normalizes the content and parses it.
func Load(ctx context.Context, r io.Reader) (*Document, error) {
	raw, err := Collect(ctx, r)
	if err != nil {
		return nil, err
	}

	return ParseString(Normalize(raw))
}
