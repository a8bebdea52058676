package utils

import "testing"

type documented struct{}

func (*documented) Run() {}
func undocumented()      {}

func TestRegisterDocMethodExpressionFoundByMethodValue(t *testing.T) {
	RegisterDoc((*documented).Run, "Runs the thing.")

	d := &documented{}
	if got := Doc(d.Run); got != "Runs the thing." {
		t.Fatalf("Doc(d.Run) = %q", got)
	}
	if got := Doc(undocumented); got != "" {
		t.Fatalf("Doc(undocumented) = %q, want empty", got)
	}
	if got := Doc(nil); got != "" {
		t.Fatalf("Doc(nil) = %q, want empty", got)
	}
}

func TestCleanDoc(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"empty", "", ""},
		{"blank lines", "\n\n  \n", ""},
		{"single line", "  Says hello.  ", "Says hello."},
		{"shared indent", "\n    First line.\n      Indented.\n    Last.\n", "First line.\n  Indented.\nLast."},
		{"tabs", "\tOne.\n\tTwo.", "One.\nTwo."},
		{"inner blank", "A.\n\nB.", "A.\n\nB."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanDoc(tt.in); got != tt.want {
				t.Fatalf("CleanDoc(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
