package pdfmerge

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

var errNoStartXref = errors.New("startxref not found")

// patchInfo appends an incremental update to the PDF at path that replaces
// its document information dictionary with props. pdfcpu stamps Producer,
// CreationDate and ModDate on every write; an appended revision is left
// as written. The update uses the same cross-reference form as the file.
func patchInfo(path string, props map[string]string) error {
	if len(props) == 0 {
		return nil
	}

	ctx, err := api.ReadContextFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if ctx.Root == nil || ctx.Size == nil {
		return fmt.Errorf("reading %s: missing trailer entries", path)
	}

	data, err := os.ReadFile(path) // #nosec G304 -- staging file written by this run
	if err != nil {
		return err
	}
	prev, err := lastStartXref(data)
	if err != nil {
		return err
	}

	size := *ctx.Size
	infoNum, infoGen := size, 0
	if ctx.Info != nil {
		infoNum, infoGen = int(ctx.Info.ObjectNumber), int(ctx.Info.GenerationNumber)
	} else {
		size++
	}
	root := fmt.Sprintf("%d %d R", int(ctx.Root.ObjectNumber), int(ctx.Root.GenerationNumber))
	id := ""
	if len(ctx.ID) > 0 {
		id = " /ID " + ctx.ID.PDFString()
	}

	var b bytes.Buffer
	b.Write(data)
	if !bytes.HasSuffix(data, []byte("\n")) {
		b.WriteByte('\n')
	}

	infoOff := b.Len()
	fmt.Fprintf(&b, "%d %d obj\n%s\nendobj\n", infoNum, infoGen, infoDict(props))

	if isXrefTable(data, prev) {
		xrefOff := b.Len()
		fmt.Fprintf(&b, "xref\n%d 1\n%010d %05d n \n", infoNum, infoOff, infoGen)
		fmt.Fprintf(&b, "trailer\n<< /Size %d /Root %s /Info %d %d R /Prev %d%s >>\n", size, root, infoNum, infoGen, prev, id)
		fmt.Fprintf(&b, "startxref\n%d\n%%%%EOF\n", xrefOff)
	} else {
		xrefNum := size
		size++
		xrefOff := b.Len()

		var entries bytes.Buffer
		writeXrefEntry(&entries, infoOff, infoGen)
		writeXrefEntry(&entries, xrefOff, 0)

		fmt.Fprintf(&b, "%d 0 obj\n<< /Type /XRef /Size %d /W [1 4 2] /Index [%d 1 %d 1] /Root %s /Info %d %d R /Prev %d%s /Length %d >>\nstream\n",
			xrefNum, size, infoNum, xrefNum, root, infoNum, infoGen, prev, id, entries.Len())
		b.Write(entries.Bytes())
		fmt.Fprintf(&b, "\nendstream\nendobj\nstartxref\n%d\n%%%%EOF\n", xrefOff)
	}

	return os.WriteFile(path, b.Bytes(), 0o644) // #nosec G306 -- book output is world-readable
}

// lastStartXref returns the offset named by the final startxref keyword.
func lastStartXref(data []byte) (int, error) {
	i := bytes.LastIndex(data, []byte("startxref"))
	if i < 0 {
		return 0, errNoStartXref
	}
	fields := strings.Fields(string(data[i+len("startxref"):]))
	if len(fields) == 0 {
		return 0, errNoStartXref
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 0 || n >= len(data) {
		return 0, fmt.Errorf("%w: bad offset %q", errNoStartXref, fields[0])
	}
	return n, nil
}

func isXrefTable(data []byte, off int) bool {
	return bytes.HasPrefix(bytes.TrimLeft(data[off:], " \t\r\n"), []byte("xref"))
}

// writeXrefEntry writes a type 1 entry for /W [1 4 2].
func writeXrefEntry(b *bytes.Buffer, off, gen int) {
	b.WriteByte(1)
	_ = binary.Write(b, binary.BigEndian, uint32(off))
	_ = binary.Write(b, binary.BigEndian, uint16(gen))
}

// infoDict renders props as a PDF dictionary with sorted keys.
func infoDict(props map[string]string) string {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("<<")
	for _, k := range keys {
		fmt.Fprintf(&b, " /%s %s", k, pdfString(props[k]))
	}
	b.WriteString(" >>")
	return b.String()
}

// pdfString encodes s as a literal string, or as UTF-16BE hex when it is
// not plain ASCII.
func pdfString(s string) string {
	ascii := true
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 || s[i] < 0x20 {
			ascii = false
			break
		}
	}
	if ascii {
		r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
		return "(" + r.Replace(s) + ")"
	}

	var b strings.Builder
	b.WriteString("<FEFF")
	for _, u := range utf16.Encode([]rune(s)) {
		fmt.Fprintf(&b, "%04X", u)
	}
	b.WriteString(">")
	return b.String()
}
