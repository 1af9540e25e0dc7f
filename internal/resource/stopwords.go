// Package resource manages the stop-word corpus that term weighting depends
// on. The corpus is downloaded once into the user's data directory and read
// from disk on later runs.
package resource

import (
	"archive/zip"
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

const (
	AppName          = "jobminer"
	DefaultLanguage  = "english"
	DefaultStopWords = "https://raw.githubusercontent.com/nltk/nltk_data/gh-pages/packages/corpora/stopwords.zip"
)

var ErrResourceMissing = errors.New("stop-word resource unavailable")

// Downloader fetches a remote file.
type Downloader interface {
	Download(ctx context.Context, target string) ([]byte, error)
}

// DefaultDir returns $XDG_DATA_HOME/jobminer.
func DefaultDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

func StopWordsPath(dir string, language string) string {
	return filepath.Join(dir, "stopwords", language)
}

// Ensure returns the local stop-word file for language, downloading it from
// source first when it is not on disk yet. source is either an NLTK-style
// stopwords.zip or a plain word list.
func Ensure(ctx context.Context, downloader Downloader, dir string, source string, language string) (string, error) {
	if strings.TrimSpace(language) == "" {
		language = DefaultLanguage
	}
	target := StopWordsPath(dir, language)

	_, err := os.Stat(target)
	if err == nil {
		return target, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: %w", ErrResourceMissing, err)
	}

	data, err := downloader.Download(ctx, source)
	if err != nil {
		return "", fmt.Errorf("%w: download %s: %w", ErrResourceMissing, source, err)
	}

	if isZip(source) {
		data, err = extractLanguage(data, language)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrResourceMissing, err)
		}
	}

	if err := writeFile(target, data); err != nil {
		return "", fmt.Errorf("%w: %w", ErrResourceMissing, err)
	}
	return target, nil
}

// Load reads one word per line, skipping blanks and # comments.
func Load(file string) ([]string, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseWords(f)
}

func parseWords(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	return words, scanner.Err()
}

func isZip(source string) bool {
	u, err := url.Parse(source)
	if err != nil {
		return strings.HasSuffix(strings.ToLower(source), ".zip")
	}
	return strings.HasSuffix(strings.ToLower(u.Path), ".zip")
}

func extractLanguage(data []byte, language string) ([]byte, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	for _, file := range reader.File {
		if path.Base(file.Name) != language || path.Base(path.Dir(file.Name)) != "stopwords" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("archive has no stopwords/%s entry", language)
}

func writeFile(target string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, target)
}
