// Package sample acquires the bounded line sample the guesser works on.
//
// A source is a bare filesystem path, a file:// URL or an http(s):// URL. At
// most MaxBytes of (decompressed) content are read; when the limit cuts the
// input, the trailing partial line is dropped. gzip and xz streams are
// recognised by their magic bytes. Content is decoded from the configured
// charset to UTF-8; a leading byte order mark is honoured and removed.
package sample

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/tls"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Defaults applied to zero-valued Options.
const (
	DefaultMaxBytes = 32 * 1024
	DefaultMaxLines = 100
	DefaultCharset  = "utf-8"
)

// ErrEmptySample is returned when a source yields no lines at all.
var ErrEmptySample = errors.New("sample: no lines")

var (
	gzipMagic = []byte{0x1f, 0x8b}
	xzMagic   = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
)

// Options bounds and decodes a sample.
type Options struct {
	MaxBytes         int
	MaxLines         int
	Charset          string
	AllowInsecureTLS bool
	Logger           logrus.FieldLogger
}

// Sample is the decoded head of a source.
type Sample struct {
	Source      string
	Compression string // "", "gzip" or "xz"
	Bytes       int    // decompressed bytes read
	Truncated   bool   // MaxBytes or MaxLines cut the input
	Digest      string // BLAKE3 of the decoded text, hex
	Lines       []string
}

// OpenFunc opens a source for reading.
type OpenFunc func(ctx context.Context, src string, insecure bool) (io.ReadCloser, error)

// openFn is the overridable seam Load uses to reach a source. Tests replace it
// to inject failing readers.
var openFn OpenFunc = Open

// Open returns a reader over src. Paths and file:// URLs are opened from the
// local filesystem; http and https URLs are fetched with a GET.
func Open(ctx context.Context, src string, insecure bool) (io.ReadCloser, error) {
	switch {
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		return openHTTP(ctx, src, insecure)
	case strings.HasPrefix(src, "file://"):
		return os.Open(strings.TrimPrefix(src, "file://"))
	default:
		return os.Open(src)
	}
}

func openHTTP(ctx context.Context, url string, insecure bool) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	tr := http.DefaultTransport.(*http.Transport).Clone()
	if insecure {
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via allow_insecure_tls
	}
	resp, err := (&http.Client{Transport: tr}).Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: unexpected status %s", url, resp.Status)
	}
	return resp.Body, nil
}

// Load reads and decodes the head of src.
func Load(ctx context.Context, src string, opt Options) (Sample, error) {
	opt = withDefaults(opt)
	out := Sample{Source: src}

	enc, err := htmlindex.Get(opt.Charset)
	if err != nil {
		return out, fmt.Errorf("charset %q: %w", opt.Charset, err)
	}

	rc, err := openFn(ctx, src, opt.AllowInsecureTLS)
	if err != nil {
		return out, fmt.Errorf("open %s: %w", src, err)
	}
	defer rc.Close()

	r, compression, err := decompress(rc)
	if err != nil {
		return out, fmt.Errorf("decompress %s: %w", src, err)
	}
	out.Compression = compression

	// One byte past the limit tells a cut input from one that fits exactly.
	raw, err := io.ReadAll(io.LimitReader(r, int64(opt.MaxBytes)+1))
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return out, fmt.Errorf("read %s: %w", src, err)
	}
	if len(raw) > opt.MaxBytes {
		raw = raw[:opt.MaxBytes]
		out.Truncated = true
	}
	out.Bytes = len(raw)

	decoded, _, err := transform.Bytes(unicode.BOMOverride(enc.NewDecoder()), raw)
	if err != nil {
		return out, fmt.Errorf("decode %s as %s: %w", src, opt.Charset, err)
	}
	text := string(decoded)

	if out.Truncated {
		// Drop the partial line the byte limit left behind.
		if i := strings.LastIndexByte(text, '\n'); i > 0 {
			text = text[:i+1]
		}
	}

	lines := SplitLines(text)
	if len(lines) > opt.MaxLines {
		lines = lines[:opt.MaxLines]
		out.Truncated = true
	}
	if len(lines) == 0 {
		return out, fmt.Errorf("%s: %w", src, ErrEmptySample)
	}
	out.Lines = lines

	sum := blake3.Sum256([]byte(text))
	out.Digest = hex.EncodeToString(sum[:])

	opt.Logger.WithFields(logrus.Fields{
		"source":      src,
		"bytes":       out.Bytes,
		"lines":       len(out.Lines),
		"compression": out.Compression,
		"truncated":   out.Truncated,
		"digest":      out.Digest,
	}).Debug("sampled input")

	return out, nil
}

func withDefaults(opt Options) Options {
	if opt.MaxBytes <= 0 {
		opt.MaxBytes = DefaultMaxBytes
	}
	if opt.MaxLines <= 0 {
		opt.MaxLines = DefaultMaxLines
	}
	if strings.TrimSpace(opt.Charset) == "" {
		opt.Charset = DefaultCharset
	}
	if opt.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		opt.Logger = l
	}
	return opt
}

// decompress sniffs r for a gzip or xz header and unwraps it.
func decompress(r io.Reader) (io.Reader, string, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(xzMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, "", err
	}

	switch {
	case bytes.HasPrefix(head, xzMagic):
		xr, err := xz.NewReader(br)
		if err != nil {
			return nil, "", err
		}
		return xr, "xz", nil
	case bytes.HasPrefix(head, gzipMagic):
		gr, err := gzip.NewReader(br)
		if err != nil {
			return nil, "", err
		}
		return gr, "gzip", nil
	default:
		return br, "", nil
	}
}

// SplitLines splits text on \r\n, \n and lone \r. A trailing line terminator
// does not produce a final empty line.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}
