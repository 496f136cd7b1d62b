package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/agbru/picalc/internal/config"
	"github.com/agbru/picalc/internal/pi"
	"github.com/agbru/picalc/internal/testutil"
)

func TestGetCalculatorsToRun(t *testing.T) {
	t.Parallel()
	factory := pi.NewTestFactory(map[string]pi.Calculator{
		"karatsuba":  &pi.MockCalculator{Label: "k"},
		"chudnovsky": &pi.MockCalculator{Label: "c"},
	})

	all := GetCalculatorsToRun(config.AppConfig{Algo: "all"}, factory)
	if len(all) != 2 || all[0].Name() != "c" || all[1].Name() != "k" {
		t.Errorf("all should select every backend in name order, got %d", len(all))
	}
	if one := GetCalculatorsToRun(config.AppConfig{Algo: "karatsuba"}, factory); len(one) != 1 || one[0].Name() != "k" {
		t.Error("a single name should select one backend")
	}
	if none := GetCalculatorsToRun(config.AppConfig{Algo: "bbp"}, factory); none != nil {
		t.Error("an unknown name should select nothing")
	}
}

func TestPrintExecutionConfig(t *testing.T) {
	useNoColor(t)
	cfg := config.AppConfig{Digits: 1000, MarginBits: 256, FFTThreshold: 500000, Timeout: time.Minute}

	var buf bytes.Buffer
	PrintExecutionConfig(cfg, &buf)
	if got, want := buf.String(), "Calculating π to 1000 digits (Chudnovsky, binary splitting)...\n"; got != want {
		t.Errorf("PrintExecutionConfig = %q, want %q", got, want)
	}

	buf.Reset()
	cfg.Details = true
	PrintExecutionConfig(cfg, &buf)
	lines := testutil.Lines(buf.String())
	if len(lines) != 4 {
		t.Fatalf("details should add three lines, got %q", lines)
	}
	if !strings.Contains(lines[1], "Series terms: 72, working precision: 3,578 bits (margin 256)") {
		t.Errorf("unexpected details line %q", lines[1])
	}
}

func TestPrintExecutionMode(t *testing.T) {
	useNoColor(t)
	var buf bytes.Buffer
	PrintExecutionMode(nil, &buf)
	if buf.Len() != 0 {
		t.Error("an empty selection prints nothing")
	}

	PrintExecutionMode([]pi.Calculator{&pi.MockCalculator{Label: "Mock"}}, &buf)
	if !strings.Contains(buf.String(), "Backend: Mock.") {
		t.Errorf("unexpected single mode line %q", buf.String())
	}

	buf.Reset()
	PrintExecutionMode([]pi.Calculator{&pi.MockCalculator{}, &pi.MockCalculator{}}, &buf)
	if buf.String() != "Comparing 2 backends.\n" {
		t.Errorf("unexpected comparison line %q", buf.String())
	}
}
