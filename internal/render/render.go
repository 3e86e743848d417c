// Package render formats a transcript plus optional summary into
// downloadable bytes: a Markdown document, or a minimal hand-built
// single-page PDF. The PDF writer emits just enough structure
// (catalog, page tree, content stream, xref) to open in any reader; no
// layout engine or embedded fonts.
package render

import (
	"bytes"
	"fmt"

	"meetflow/internal/format"
	"meetflow/internal/models"
)

// Markdown renders a transcript (and, when non-empty, a summary) as a
// Markdown document.
func Markdown(title string, segments []models.AttributedSegment, summaryText string) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n\n", title)

	if summaryText != "" {
		buf.WriteString("## Summary\n\n")
		buf.WriteString(summaryText)
		buf.WriteString("\n\n")
	}

	buf.WriteString("## Transcript\n\n")
	for _, seg := range segments {
		if seg.Text == "" {
			continue
		}
		fmt.Fprintf(&buf, "**%s** [%s - %s]\n\n%s\n\n", format.SpeakerDisplayName(seg.Speaker), seg.Start, seg.End, seg.Text)
	}

	return buf.Bytes()
}

// PDF renders the same content as Markdown but wrapped in a minimal
// single-page PDF document sufficient for a downloadable artifact: a
// PDF body stream containing the rendered text, preceded by a standard
// object/xref/trailer skeleton.
func PDF(title string, segments []models.AttributedSegment, summaryText string) []byte {
	lines := textLines(title, segments, summaryText)
	return buildMinimalPDF(lines)
}

func textLines(title string, segments []models.AttributedSegment, summaryText string) []string {
	lines := []string{title, ""}
	if summaryText != "" {
		lines = append(lines, "Summary:", summaryText, "")
	}
	lines = append(lines, "Transcript:", "")
	for _, seg := range segments {
		if seg.Text == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s [%s-%s]: %s", format.SpeakerDisplayName(seg.Speaker), seg.Start, seg.End, seg.Text))
	}
	return lines
}

// buildMinimalPDF assembles a syntactically valid single-page PDF: a
// Catalog, a Pages tree with one Page, a content stream of Tj text
// operators (one per line, escaped per the PDF string-literal rules),
// and a Helvetica font resource. Good enough to open in any PDF reader;
// no layout engine, pagination, or embedded fonts.
func buildMinimalPDF(lines []string) []byte {
	var content bytes.Buffer
	content.WriteString("BT /F1 11 Tf 40 760 Td 14 TL\n")
	for _, line := range lines {
		fmt.Fprintf(&content, "(%s) Tj T*\n", escapePDFString(line))
	}
	content.WriteString("ET")

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", content.Len(), content.String()),
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects)+1)
	for i, obj := range objects {
		offsets[i+1] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xrefStart := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= len(objects); i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF", len(objects)+1, xrefStart)

	return buf.Bytes()
}

func escapePDFString(s string) string {
	var buf bytes.Buffer
	for _, r := range s {
		switch r {
		case '(', ')', '\\':
			buf.WriteByte('\\')
			buf.WriteRune(r)
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}
