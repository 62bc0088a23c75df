package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildPDF assembles a minimal PDF with the given number of empty pages,
// computing the cross-reference offsets.
func buildPDF(pages int) []byte {
	var objs []string
	kids := ""
	for i := 0; i < pages; i++ {
		kids += fmt.Sprintf("%d 0 R ", 3+i)
	}
	objs = append(objs, "<< /Type /Catalog /Pages 2 0 R >>")
	objs = append(objs, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, pages))
	for i := 0; i < pages; i++ {
		objs = append(objs, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] >>")
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, o := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objs)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestInspect(t *testing.T) {
	data := buildPDF(2)
	path := writeFile(t, "two.pdf", data)

	info, err := Inspect(path)
	require.NoError(t, err)
	assert.Equal(t, 2, info.Pages)
	assert.Equal(t, int64(len(data)), info.Size)
	assert.Equal(t, path, info.Path)
}

func TestInspect_Errors(t *testing.T) {
	_, err := Inspect(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)

	_, err = Inspect(writeFile(t, "bad.pdf", []byte("not a pdf")))
	assert.Error(t, err)
}

func TestExtractText_NoText(t *testing.T) {
	text, err := ExtractText(writeFile(t, "one.pdf", buildPDF(1)), 0)
	require.NoError(t, err)
	assert.Empty(t, bytes.TrimSpace([]byte(text)))
}

func TestWeasyPrintArgs(t *testing.T) {
	w := &WeasyPrint{Stylesheet: "/etc/zotpdf/layout.css"}
	assert.Equal(t, []string{"-u", "/etc/zotpdf/", "-", "/out/a.pdf"}, w.args("/out/a.pdf"))
	assert.NotContains(t, w.args("/out/a.pdf"), "-s", "the stylesheet arrives through the document link only")

	w = &WeasyPrint{Stylesheet: "/etc/zotpdf/layout.css", BaseURL: "https://example.org/"}
	assert.Equal(t, []string{"-u", "https://example.org/", "-", "o.pdf"}, w.args("o.pdf"))

	w = &WeasyPrint{}
	assert.Equal(t, []string{"-", "o.pdf"}, w.args("o.pdf"))
	assert.Equal(t, DefaultBinary, w.binary())
}

// fakeWeasyPrint writes a shell script standing in for weasyprint: it copies
// stdin to the last argument.
func fakeWeasyPrint(t *testing.T, body string) string {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	path := filepath.Join(t.TempDir(), "weasyprint")
	script := "#!/bin/sh\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

func TestWeasyPrintConvert(t *testing.T) {
	bin := fakeWeasyPrint(t, `for last; do :; done; cat > "$last"`)
	css := writeFile(t, "layout.css", []byte("body { font-family: serif; }"))
	out := filepath.Join(t.TempDir(), "nested", "complete.pdf")

	w := &WeasyPrint{Binary: bin, Stylesheet: css}
	require.NoError(t, w.Convert(context.Background(), []byte("<html></html>"), out))

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(got))
}

func TestWeasyPrintConvert_Failure(t *testing.T) {
	bin := fakeWeasyPrint(t, `echo "font config broken" >&2; exit 3`)

	w := &WeasyPrint{Binary: bin}
	err := w.Convert(context.Background(), []byte("<html></html>"), filepath.Join(t.TempDir(), "x.pdf"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConversionFailed)
	assert.Contains(t, err.Error(), "font config broken")

	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, exitErr.ExitCode())
}

func TestWeasyPrintConvert_NoOutput(t *testing.T) {
	bin := fakeWeasyPrint(t, `cat > /dev/null`)

	w := &WeasyPrint{Binary: bin}
	err := w.Convert(context.Background(), []byte("<html></html>"), filepath.Join(t.TempDir(), "x.pdf"))
	assert.ErrorIs(t, err, ErrConversionFailed)
}

func TestWeasyPrintCheck(t *testing.T) {
	w := &WeasyPrint{Binary: filepath.Join(t.TempDir(), "no-such-binary")}
	assert.True(t, errors.Is(w.Check(), ErrConverterNotFound))

	bin := fakeWeasyPrint(t, "exit 0")
	w = &WeasyPrint{Binary: bin, Stylesheet: filepath.Join(t.TempDir(), "missing.css")}
	assert.Error(t, w.Check())

	w = &WeasyPrint{Binary: bin, Stylesheet: t.TempDir()}
	assert.Error(t, w.Check())
}
