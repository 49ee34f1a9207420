package memory

import (
	"runtime/debug"
	"testing"
)

// resetMemoryLimit restores the process memory limit after a test.
func resetMemoryLimit(t *testing.T) {
	t.Helper()
	old := debug.SetMemoryLimit(-1)
	t.Cleanup(func() { debug.SetMemoryLimit(old) })
}

func TestConfigureFromEnv_NoEnvironmentVariables(t *testing.T) {
	t.Setenv("GOMEMLIMIT", "")
	t.Setenv("MEMORY_LIMIT", "")
	t.Setenv("MEMORY_RATIO", "")

	result := ConfigureFromEnv()

	if result.Configured {
		t.Error("Expected Configured to be false when no env vars set")
	}
	if result.Source != sourceNone {
		t.Errorf("Expected Source %q, got %q", sourceNone, result.Source)
	}
	if result.ContainerLimit != 0 || result.GoMemLimit != 0 || result.Ratio != 0 {
		t.Errorf("Expected zero limits, got %+v", result)
	}
}

func TestConfigureFromEnv_GOMEMLIMITTakesPrecedence(t *testing.T) {
	resetMemoryLimit(t)
	t.Setenv("GOMEMLIMIT", "500MiB")
	t.Setenv("MEMORY_LIMIT", "1073741824")

	// GOMEMLIMIT is only read at process start; simulate its effect.
	debug.SetMemoryLimit(500 * 1024 * 1024)

	result := ConfigureFromEnv()

	if !result.Configured || result.Source != sourceGOMEMLIMIT {
		t.Fatalf("Expected GOMEMLIMIT source, got %+v", result)
	}
	if result.GoMemLimit != 500*1024*1024 {
		t.Errorf("Expected GoMemLimit 500MiB, got %d", result.GoMemLimit)
	}
	if result.ContainerLimit != 0 {
		t.Errorf("MEMORY_LIMIT must be ignored, got ContainerLimit %d", result.ContainerLimit)
	}
}

func TestConfigureFromEnv_MEMORYLIMIT(t *testing.T) {
	tests := []struct {
		name      string
		ratio     string
		wantRatio float64
	}{
		{"default ratio", "", DefaultMemoryRatio},
		{"custom ratio", "0.5", 0.5},
		{"ratio of one", "1.0", 1.0},
		{"ratio out of range", "1.5", DefaultMemoryRatio},
		{"ratio zero", "0", DefaultMemoryRatio},
		{"ratio not a number", "lots", DefaultMemoryRatio},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetMemoryLimit(t)
			t.Setenv("GOMEMLIMIT", "")
			t.Setenv("MEMORY_LIMIT", "1073741824")
			t.Setenv("MEMORY_RATIO", tt.ratio)

			result := ConfigureFromEnv()

			if !result.Configured || result.Source != sourceMEMORYLIMIT {
				t.Fatalf("Expected MEMORY_LIMIT source, got %+v", result)
			}
			if result.Ratio != tt.wantRatio {
				t.Errorf("Expected Ratio %v, got %v", tt.wantRatio, result.Ratio)
			}
			want := int64(float64(1073741824) * tt.wantRatio)
			if result.GoMemLimit != want {
				t.Errorf("Expected GoMemLimit %d, got %d", want, result.GoMemLimit)
			}
			if got := debug.SetMemoryLimit(-1); got != want {
				t.Errorf("Runtime memory limit = %d, want %d", got, want)
			}
		})
	}
}

func TestConfigureFromEnv_InvalidMEMORYLIMIT(t *testing.T) {
	for _, v := range []string{"1Gi", "-1073741824", "0"} {
		t.Run(v, func(t *testing.T) {
			resetMemoryLimit(t)
			t.Setenv("GOMEMLIMIT", "")
			t.Setenv("MEMORY_LIMIT", v)

			result := ConfigureFromEnv()
			if result.Configured || result.Source != sourceNone {
				t.Errorf("MEMORY_LIMIT=%q: expected unconfigured, got %+v", v, result)
			}
		})
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{1048576, "1.0 MiB"},
		{912680550, "870.4 MiB"},
		{1073741824, "1.0 GiB"},
		{1099511627776, "1.0 TiB"},
	}

	for _, tt := range tests {
		if got := FormatBytes(tt.bytes); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}

func TestParseRatio(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"", DefaultMemoryRatio},
		{"0.7", 0.7},
		{" 0.7 ", 0.7},
		{"1", 1},
		{"1.01", DefaultMemoryRatio},
		{"-0.5", DefaultMemoryRatio},
		{"half", DefaultMemoryRatio},
	}

	for _, tt := range tests {
		if got := parseRatio(tt.in); got != tt.want {
			t.Errorf("parseRatio(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
