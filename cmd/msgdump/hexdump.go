package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// dumpWidth picks the bytes per line of a hex dump from the terminal width.
func dumpWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 16
	}
	cols, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 16
	}
	// offset, three columns and one glyph per byte
	switch {
	case cols >= 10+4*32:
		return 32
	case cols >= 10+4*16:
		return 16
	default:
		return 8
	}
}

// hexDump renders data as offset, hex bytes and printable ASCII.
func hexDump(data []byte, perLine int) string {
	var b strings.Builder
	for off := 0; off < len(data); off += perLine {
		end := off + perLine
		if end > len(data) {
			end = len(data)
		}
		line := data[off:end]

		fmt.Fprintf(&b, "%08x  ", off)
		for i := 0; i < perLine; i++ {
			if i < len(line) {
				fmt.Fprintf(&b, "%02x ", line[i])
			} else {
				b.WriteString("   ")
			}
		}
		b.WriteString(" |")
		for _, c := range line {
			if c >= 0x20 && c < 0x7f {
				b.WriteByte(c)
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteString("|\n")
	}
	return b.String()
}
