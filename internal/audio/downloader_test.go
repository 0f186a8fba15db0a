package audio

import (
	"strings"
	"testing"
)

func TestSafeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Episode 42: The Future", "Episode-42-The-Future"},
		{"  spaces  ", "spaces"},
		{"已经/unsafe\\chars", "unsafe-chars"},
		{"", "episode"},
		{"///", "episode"},
	}
	for _, tt := range tests {
		if got := SafeName(tt.in); got != tt.want {
			t.Errorf("SafeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSafeNameTruncates(t *testing.T) {
	long := strings.Repeat("a", 200)
	if got := SafeName(long); len(got) != 80 {
		t.Errorf("long name should truncate to 80 chars, got %d", len(got))
	}
}

func TestNormalizeArgs(t *testing.T) {
	args := normalizeArgs("in.mp3", "out.wav", "wav", true)
	joined := strings.Join(args, " ")
	for _, want := range []string{"-ar 16000", "-ac 1", "-c:a pcm_s16le", "-af loudnorm"} {
		if !strings.Contains(joined, want) {
			t.Errorf("wav args missing %q: %s", want, joined)
		}
	}
	if args[len(args)-1] != "out.wav" {
		t.Errorf("output path should be last arg: %v", args)
	}

	plain := strings.Join(normalizeArgs("in.mp3", "out.mp3", "mp3", false), " ")
	if strings.Contains(plain, "loudnorm") {
		t.Errorf("fallback args should omit loudnorm: %s", plain)
	}
	if strings.Contains(plain, "pcm_s16le") {
		t.Errorf("mp3 args should omit pcm codec: %s", plain)
	}
}
