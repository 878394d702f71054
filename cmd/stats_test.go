package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/spf13/viper"

	"github.com/bimmerbailey/memsift/internal/dedupe"
)

func TestStatsText(t *testing.T) {
	viper.Reset()
	viper.Set("format", "text")

	dir := t.TempDir()
	file := writeTempFile(t, dir, "app.log", []string{
		"==1== Invalid read of size 4",
		"   at 0x1: f (a.c:1)",
		"==2== Invalid read of size 4",
		"   at 0x2: f (a.c:9)",
		"==3== LEAK SUMMARY:",
		"",
	})

	var out, errOut bytes.Buffer
	cmd := newFilterTestCmd(&out, &errOut)

	if err := runStats(cmd, []string{file}); err != nil {
		t.Fatalf("runStats() error = %v", err)
	}

	output := out.String()
	for _, want := range []string{"Blocks: 3", "Unique: 2", "Suppressed: 1"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in stats output:\n%s", want, output)
		}
	}
}

func TestStatsJSON(t *testing.T) {
	viper.Reset()
	viper.Set("format", "json")

	dir := t.TempDir()
	file := writeTempFile(t, dir, "app.log", []string{
		"==1== Invalid read of size 4",
		"==2== LEAK SUMMARY:",
		"",
	})

	var out, errOut bytes.Buffer
	cmd := newFilterTestCmd(&out, &errOut)

	if err := runStats(cmd, []string{file}); err != nil {
		t.Fatalf("runStats() error = %v", err)
	}

	var sum dedupe.Summary
	if err := json.Unmarshal(out.Bytes(), &sum); err != nil {
		t.Fatalf("failed to unmarshal JSON: %v\noutput: %s", err, out.String())
	}
	if sum.Blocks != 2 || sum.Accepted != 2 {
		t.Errorf("summary = %+v, want 2 blocks / 2 accepted", sum)
	}
	if sum.Categories["leak"] != 1 || sum.Categories["invalid-access"] != 1 {
		t.Errorf("categories = %v", sum.Categories)
	}
}
