package ui

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

func TestStatusfWritesToErr(t *testing.T) {
	var out, errOut bytes.Buffer
	u := New(&out, &errOut, ColorAlways, false)

	u.Statusf("Getting job links in %d page(s)...\n", 2)

	if out.Len() != 0 {
		t.Fatalf("stdout = %q, want empty", out.String())
	}
	if errOut.String() != "Getting job links in 2 page(s)...\n" {
		t.Fatalf("stderr = %q", errOut.String())
	}
}

func TestSuccessfAndWarnfUseStderr(t *testing.T) {
	var out, errOut bytes.Buffer
	u := New(&out, &errOut, ColorNever, false)

	u.Successf("Word cloud saved to %s", "/tmp/cloud.png")
	u.Warnf("could not open %s", "/tmp/cloud.png")
	u.Infof("Created: %s", "config.json")

	if out.String() != "Created: config.json\n" {
		t.Fatalf("stdout = %q", out.String())
	}
	want := "Word cloud saved to /tmp/cloud.png\ncould not open /tmp/cloud.png\n"
	if errOut.String() != want {
		t.Fatalf("stderr = %q, want %q", errOut.String(), want)
	}
}

func TestNormalizeColorMode(t *testing.T) {
	cases := map[string]ColorMode{
		"always":  ColorAlways,
		" NEVER ": ColorNever,
		"":        ColorAuto,
		"bogus":   ColorAuto,
	}
	for in, want := range cases {
		if got := NormalizeColorMode(in); got != want {
			t.Fatalf("NormalizeColorMode(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestColorDisabledByFlag(t *testing.T) {
	u := New(&bytes.Buffer{}, &bytes.Buffer{}, ColorAlways, true)
	if u.ColorEnabled {
		t.Fatalf("expected color disabled")
	}
}

func TestRenderBar(t *testing.T) {
	got := renderBar("posts", 3, 6)
	want := "posts [" + strings.Repeat("#", 15) + strings.Repeat(".", 15) + "] 3/6"
	if got != want {
		t.Fatalf("renderBar() = %q, want %q", got, want)
	}
}

func TestProgressConcurrentIncrements(t *testing.T) {
	var buf bytes.Buffer
	p := newProgress(&buf, "posts", 50, true)

	var wg sync.WaitGroup
	for i := 0; i < 60; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Increment()
		}()
	}
	wg.Wait()
	p.Done()

	if p.current != 50 {
		t.Fatalf("current = %d, want capped at 50", p.current)
	}
	if !strings.Contains(buf.String(), "50/50") {
		t.Fatalf("final frame missing from output: %q", buf.String())
	}
}

func TestProgressSilentWhenDisabled(t *testing.T) {
	var buf bytes.Buffer
	p := newProgress(&buf, "pages", 3, false)
	p.Increment()
	p.Done()
	if buf.Len() != 0 {
		t.Fatalf("output = %q, want empty", buf.String())
	}

	var nilBar *Progress
	nilBar.Increment()
	nilBar.Done()
}
