package util

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestTruncateString(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"short string unchanged", "flat", 10, "flat"},
		{"exact length unchanged", "hello", 5, "hello"},
		{"long string truncated", "hello world", 8, "hello..."},
		{"tiny maxLen collapses to ellipsis", "hello", 3, "..."},
		{"zero maxLen collapses to ellipsis", "hello", 0, "..."},
		{"negative maxLen collapses to ellipsis", "hello", -5, "..."},
		{"empty string unchanged", "", 10, ""},
		{"wide runes counted per rune", "日本語テスト", 5, "日本..."},
		{"mixed ascii and wide runes", "hello日本語world", 10, "hello日本..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateString(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("TruncateString(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestTruncateANSI(t *testing.T) {
	bold := lipgloss.NewStyle().Bold(true)

	t.Run("plain string truncated", func(t *testing.T) {
		if got := TruncateANSI("hello world", 8); got != "hello..." {
			t.Errorf("TruncateANSI = %q, want %q", got, "hello...")
		}
	})

	t.Run("short styled string unchanged", func(t *testing.T) {
		in := bold.Render("hfl")
		if got := TruncateANSI(in, 10); got != in {
			t.Errorf("TruncateANSI modified a string that already fits: %q", got)
		}
	})

	t.Run("styled string fits the width budget", func(t *testing.T) {
		got := TruncateANSI(bold.Render("fairbench - cgroups"), 12)
		if w := lipgloss.Width(got); w > 12 {
			t.Errorf("rendered width = %d, want <= 12", w)
		}
	})

	t.Run("wide characters measured by columns", func(t *testing.T) {
		got := TruncateANSI("日本語テスト", 8)
		if w := lipgloss.Width(got); w > 8 {
			t.Errorf("rendered width = %d, want <= 8", w)
		}
	})

	t.Run("tiny width collapses to ellipsis", func(t *testing.T) {
		if got := TruncateANSI("hello", 2); got != "..." {
			t.Errorf("TruncateANSI = %q, want %q", got, "...")
		}
	})
}
