package requirements

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		line    string
		name    string
		op      Op
		version string
	}{
		{"Flask==2.2.3", "Flask", OpExact, "2.2.3"},
		{"requests>=2.28", "requests", OpAtLeast, "2.28"},
		{"urllib3<=2.0", "urllib3", OpAtMost, "2.0"},
		{"numpy>1.20", "numpy", OpGreater, "1.20"},
		{"pandas<2.0", "pandas", OpLess, "2.0"},
		{"django~=4.2", "django", OpCompatible, "4.2"},
		{"six", "six", OpNone, ""},
		{"  Werkzeug==1.0.1  ", "Werkzeug", OpExact, "1.0.1"},
		{"pkg == 1.0", "pkg", OpExact, "1.0"},
	}

	for _, tt := range tests {
		req := Parse(tt.line)
		if req == nil {
			t.Fatalf("Parse(%q) = nil, want requirement", tt.line)
		}
		if req.Name != tt.name {
			t.Errorf("Parse(%q).Name = %q, want %q", tt.line, req.Name, tt.name)
		}
		if req.Op != tt.op {
			t.Errorf("Parse(%q).Op = %q, want %q", tt.line, req.Op, tt.op)
		}
		if req.Version != tt.version {
			t.Errorf("Parse(%q).Version = %q, want %q", tt.line, req.Version, tt.version)
		}
	}
}

func TestParseSkipsBlanksAndComments(t *testing.T) {
	for _, line := range []string{"", "   ", "# comment", "  # indented comment"} {
		if req := Parse(line); req != nil {
			t.Errorf("Parse(%q) = %+v, want nil", line, req)
		}
	}
}

func TestParseOperatorPriority(t *testing.T) {
	// "==" wins over ">" even when ">" appears first in the line.
	req := Parse("a>b==1.0")
	if req.Op != OpExact {
		t.Errorf("Op = %q, want %q", req.Op, OpExact)
	}
	if req.Version != "1.0" {
		t.Errorf("Version = %q, want %q", req.Version, "1.0")
	}
	// The name still stops at the earliest operator token.
	if req.Name != "a" {
		t.Errorf("Name = %q, want %q", req.Name, "a")
	}
}

func TestCanonicalNameIdempotent(t *testing.T) {
	for _, name := range []string{"flask", "Werkzeug", "zope.interface", "typing-extensions"} {
		once := CanonicalName(name)
		if once != name {
			t.Errorf("CanonicalName(%q) = %q, want unchanged", name, once)
		}
		if twice := CanonicalName(once); twice != once {
			t.Errorf("CanonicalName not idempotent: %q -> %q", once, twice)
		}
	}
}

func TestParseAll(t *testing.T) {
	text := "Flask==2.2.3\n# pinned for CI\n\nWerkzeug==1.0.1\nsix\n"
	reqs := ParseAll(text)

	want := []string{"Flask==2.2.3", "Werkzeug==1.0.1", "six"}
	var got []string
	for _, r := range reqs {
		got = append(got, r.Raw)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseAll raw lines = %v, want %v", got, want)
	}
}

func TestParseAllEmpty(t *testing.T) {
	if reqs := ParseAll("# only\n# comments\n\n"); len(reqs) != 0 {
		t.Errorf("ParseAll comment-only text = %v, want empty", reqs)
	}
}

func TestIsExact(t *testing.T) {
	if !Parse("a==1.0").IsExact() {
		t.Error("a==1.0 should be exact")
	}
	if Parse("a>=1.0").IsExact() {
		t.Error("a>=1.0 should not be exact")
	}
	if Parse("a").IsExact() {
		t.Error("name-only requirement should not be exact")
	}
}
