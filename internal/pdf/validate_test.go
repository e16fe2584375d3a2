package pdf

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

// buildPDF makes a synthetic document that passes every structural check.
func buildPDF(version string, size int) []byte {
	var b bytes.Buffer
	b.WriteString("%PDF-" + version + "\n")
	b.WriteString("1 0 obj\n<< /Type /Catalog >>\nendobj\n")
	for b.Len() < size-64 {
		b.WriteString("% padding line to reach a realistic size\n")
	}
	b.WriteString("xref\n0 1\ntrailer\n<< /Size 1 >>\nstartxref\n0\n%%EOF\n")
	return b.Bytes()
}

func TestValidateAcceptsWellFormedBuffer(t *testing.T) {
	if err := Validate(buildPDF("1.4", 400)); err != nil {
		t.Fatalf("expected valid PDF, got: %v", err)
	}
}

func TestValidateRejectsTooSmall(t *testing.T) {
	buf := make([]byte, 199)
	copy(buf, "%PDF-1.4")
	err := Validate(buf)
	if !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got: %v", err)
	}
	if !strings.Contains(err.Error(), "too small") {
		t.Fatalf("expected a too-small reason, got: %v", err)
	}
}

func TestValidateRejectsMissingHeader(t *testing.T) {
	buf := bytes.Repeat([]byte("A"), 400)
	err := Validate(buf)
	if !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got: %v", err)
	}
	if !strings.Contains(err.Error(), "%PDF header") {
		t.Fatalf("expected a header reason, got: %v", err)
	}
}

func TestValidateRejectsUnsupportedVersion(t *testing.T) {
	err := Validate(buildPDF("3.1", 400))
	if !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got: %v", err)
	}
	if !strings.Contains(err.Error(), "version") {
		t.Fatalf("expected a version reason, got: %v", err)
	}
}

func TestValidateRejectsMissingEOF(t *testing.T) {
	doc := buildPDF("1.7", 400)
	doc = bytes.ReplaceAll(doc, []byte("%%EOF"), []byte("#####"))
	err := Validate(doc)
	if !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got: %v", err)
	}
	if !strings.Contains(err.Error(), "EOF") {
		t.Fatalf("expected an EOF reason, got: %v", err)
	}
}

func TestValidateRejectsMissingXrefAndTrailer(t *testing.T) {
	doc := buildPDF("1.4", 400)
	noXref := bytes.ReplaceAll(doc, []byte("xref"), []byte("nope"))
	if err := Validate(noXref); err == nil || !strings.Contains(err.Error(), "xref") {
		t.Fatalf("expected an xref reason, got: %v", err)
	}

	noTrailer := bytes.ReplaceAll(doc, []byte("trailer"), []byte("trailex"))
	if err := Validate(noTrailer); err == nil || !strings.Contains(err.Error(), "trailer") {
		t.Fatalf("expected a trailer reason, got: %v", err)
	}
}

func TestValidateEOFOutsideTailWindowRejected(t *testing.T) {
	var b bytes.Buffer
	b.WriteString("%PDF-1.4\nxref trailer %%EOF\n")
	// Push the EOF marker more than 1024 bytes from the end.
	b.Write(bytes.Repeat([]byte("x"), 2048))
	err := Validate(b.Bytes())
	if !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got: %v", err)
	}
}
