// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logbuf

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
)

func TestLogWritesThroughAndBuffers(t *testing.T) {
	var out bytes.Buffer
	l := New(&out)

	l.Log("hello")
	l.Logf("count: %d", 2)

	if got := out.String(); got != "hello\ncount: 2\n" {
		t.Errorf("write-through = %q, want %q", got, "hello\ncount: 2\n")
	}

	lines := l.Lines()
	if len(lines) != 2 {
		t.Fatalf("Lines() returned %d entries, want 2", len(lines))
	}
	if !strings.HasSuffix(lines[0], "] hello") {
		t.Errorf("first entry %q missing timestamp prefix or message", lines[0])
	}
}

func TestLogEvictsOldestAtCap(t *testing.T) {
	l := New(nil)
	for i := 0; i < maxEntries+10; i++ {
		l.Log(fmt.Sprintf("line %d", i))
	}

	lines := l.Lines()
	if len(lines) != maxEntries {
		t.Fatalf("buffer holds %d entries, want %d", len(lines), maxEntries)
	}
	if !strings.HasSuffix(lines[0], "line 10") {
		t.Errorf("oldest retained entry = %q, want suffix %q", lines[0], "line 10")
	}
	if !strings.HasSuffix(lines[len(lines)-1], fmt.Sprintf("line %d", maxEntries+9)) {
		t.Errorf("newest entry = %q, want the last logged line", lines[len(lines)-1])
	}
}

func TestLinesReturnsSnapshot(t *testing.T) {
	l := New(nil)
	l.Log("a")
	snap := l.Lines()
	l.Log("b")
	if len(snap) != 1 {
		t.Errorf("snapshot grew after later Log: len = %d, want 1", len(snap))
	}
}
