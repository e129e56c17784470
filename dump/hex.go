package dump

import "fmt"

// hexDump renders data as 16-bytes-per-line hex with an ASCII gutter,
// the same shape a disassembler listing's byte columns use.
func hexDump(data []byte) string {
	var out []byte
	for off := 0; off < len(data); off += 16 {
		end := off + 16
		if end > len(data) {
			end = len(data)
		}
		line := data[off:end]
		out = append(out, []byte(fmt.Sprintf("%08x  ", off))...)
		for i := 0; i < 16; i++ {
			if i < len(line) {
				out = append(out, []byte(fmt.Sprintf("%02x ", line[i]))...)
			} else {
				out = append(out, []byte("   ")...)
			}
		}
		out = append(out, ' ')
		for _, b := range line {
			if b >= 0x20 && b < 0x7f {
				out = append(out, b)
			} else {
				out = append(out, '.')
			}
		}
		out = append(out, '\n')
	}
	return string(out)
}
