package main

import (
	"bytes"
	"regexp"
	"strings"
	"testing"
)

func TestNewLoggerLevels(t *testing.T) {
	// Each line is "LEVEL [caller] message"; the caller only appears in debug mode.
	line := func(level, msg string) *regexp.Regexp {
		return regexp.MustCompile(`(?m)^` + level + ` (\S+ )?` + msg + `$`)
	}
	tests := []struct {
		name           string
		verbose, debug bool
		want           []*regexp.Regexp
		notWant        []string
	}{
		{name: "default", want: []*regexp.Regexp{line("WARN", "w")}, notWant: []string{"INFO", "DEBUG"}},
		{name: "verbose", verbose: true, want: []*regexp.Regexp{line("INFO", "i"), line("WARN", "w")}, notWant: []string{"DEBUG", "logger_test.go"}},
		{name: "debug", debug: true, want: []*regexp.Regexp{
			line("DEBUG", "d"),
			line("INFO", "i"),
			line("WARN", "w"),
			regexp.MustCompile(`(?m)^INFO \S*logger_test\.go:\d+ i$`),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log, err := NewLogger(&buf, tt.verbose, tt.debug)
			if err != nil {
				t.Fatal(err)
			}
			log.Debug("d")
			log.Info("i")
			log.Warn("w")
			got := buf.String()
			for _, re := range tt.want {
				if !re.MatchString(got) {
					t.Errorf("output does not match %q:\n%s", re, got)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(got, w) {
					t.Errorf("output has %q:\n%s", w, got)
				}
			}
			if strings.Contains(got, "\033[") {
				t.Errorf("colored output to a non-terminal:\n%q", got)
			}
		})
	}
}
