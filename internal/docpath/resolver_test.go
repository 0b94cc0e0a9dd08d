package docpath

import (
	"errors"
	"testing"

	"sigedoc/internal/domain"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		version  int
		fileName string
		want     string
		wantErr  bool
	}{
		{
			name:     "procedure code",
			code:     "PR-GC-01",
			version:  1,
			fileName: "plan.docx",
			want:     "procedures/PR-GC-01/v1/PR-GC-01-v1.docx",
		},
		{
			name:     "unknown prefix falls back to other",
			code:     "XX-01-01",
			version:  2,
			fileName: "f.pdf",
			want:     "other/XX-01-01/v2/XX-01-01-v2.pdf",
		},
		{
			name:     "format code",
			code:     "FO-RH-12",
			version:  3,
			fileName: "registro.xlsx",
			want:     "formats/FO-RH-12/v3/FO-RH-12-v3.xlsx",
		},
		{
			name:     "lowercase prefix accepted",
			code:     "ma-OP-02",
			version:  1,
			fileName: "manual.pdf",
			want:     "manuals/ma-OP-02/v1/ma-OP-02-v1.pdf",
		},
		{
			name:     "uppercase extension is lowered",
			code:     "GU-TI-05",
			version:  1,
			fileName: "Guia.PDF",
			want:     "guides/GU-TI-05/v1/GU-TI-05-v1.pdf",
		},
		{
			name:     "code without separator lands in other",
			code:     "PROC01",
			version:  1,
			fileName: "doc.pdf",
			want:     "other/PROC01/v1/PROC01-v1.pdf",
		},
		{
			name:     "version below one rejected",
			code:     "PR-GC-01",
			version:  0,
			fileName: "plan.docx",
			wantErr:  true,
		},
		{
			name:     "missing extension rejected",
			code:     "PR-GC-01",
			version:  1,
			fileName: "plan",
			wantErr:  true,
		},
		{
			name:     "trailing dot rejected",
			code:     "PR-GC-01",
			version:  1,
			fileName: "plan.",
			wantErr:  true,
		},
		{
			name:    "empty code rejected",
			version: 1, fileName: "plan.docx",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Resolve(tt.code, tt.version, tt.fileName)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Resolve(%q, %d, %q) expected error", tt.code, tt.version, tt.fileName)
				}
				if !errors.Is(err, domain.ErrValidation) {
					t.Errorf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if got := p.String(); got != tt.want {
				t.Errorf("Resolve = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	a, err := Resolve("PR-GC-01", 4, "plan.docx")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	b, err := Resolve("PR-GC-01", 4, "plan.docx")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if a.String() != b.String() {
		t.Errorf("identical inputs produced different paths: %q vs %q", a, b)
	}
}

func TestWithSuffix(t *testing.T) {
	p, err := Resolve("PR-GC-01", 1, "plan.docx")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	retried := p.WithSuffix("01HZX4T8")
	if got, want := retried.String(), "procedures/PR-GC-01/v1/PR-GC-01-v1-01HZX4T8.docx"; got != want {
		t.Errorf("WithSuffix path = %q, want %q", got, want)
	}
	// Original path is unaffected.
	if got, want := p.String(), "procedures/PR-GC-01/v1/PR-GC-01-v1.docx"; got != want {
		t.Errorf("original path mutated: %q, want %q", got, want)
	}
}

func TestDownloadName(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		display string
		version int
		ext     string
		want    string
	}{
		{
			name:    "spaces and accents sanitized",
			code:    "PR-GC-01",
			display: "Plan de Auditoría",
			version: 2,
			ext:     "docx",
			want:    "PR-GC-01_Plan_de_Auditor_a_v2.docx",
		},
		{
			name:    "clean name untouched",
			code:    "FO-RH-12",
			display: "Registro",
			version: 1,
			ext:     "xlsx",
			want:    "FO-RH-12_Registro_v1.xlsx",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DownloadName(tt.code, tt.display, tt.version, tt.ext); got != tt.want {
				t.Errorf("DownloadName = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtensionAndStem(t *testing.T) {
	if got := Extension("archive.tar.gz"); got != "gz" {
		t.Errorf("Extension = %q, want gz", got)
	}
	if got := Extension("noext"); got != "" {
		t.Errorf("Extension = %q, want empty", got)
	}
	if got := Stem("plan.docx"); got != "plan" {
		t.Errorf("Stem = %q, want plan", got)
	}
	if got := Stem("noext"); got != "noext" {
		t.Errorf("Stem = %q, want noext", got)
	}
}
