package cli

import (
	"bytes"
	"fmt"
	"io"
)

// DumpWidth is the number of bytes per dump row.
const DumpWidth = 32

// Dump writes a hex dump of mem, base being the address of mem[0]. Rows of
// zeros are collapsed into a `*` line. The byte at mark, if any, is shown
// in reverse video when highlight is set.
func Dump(w io.Writer, mem []byte, base, mark int, highlight bool) {
	zz := make([]byte, DumpWidth)
	for i := 0; i < len(mem); {
		if i%DumpWidth == 0 {
			end := min(i+DumpWidth, len(mem))
			if bytes.Equal(mem[i:end], zz[:end-i]) && (mark < base+i || mark >= base+end) {
				_, _ = fmt.Fprint(w, "\n*")
				for ; i < len(mem); i += DumpWidth {
					end := min(i+DumpWidth, len(mem))
					if !bytes.Equal(mem[i:end], zz[:end-i]) || (mark >= base+i && mark < base+end) {
						break
					}
				}
				continue
			}
			_, _ = fmt.Fprintf(w, "\n0x%04X:", base+i)
		}
		if highlight && base+i == mark {
			_, _ = fmt.Fprint(w, "\033[7m")
		}
		_, _ = fmt.Fprintf(w, " %02x", mem[i])
		if highlight && base+i == mark {
			_, _ = fmt.Fprint(w, "\033[27m")
		}
		i++
	}
	_, _ = fmt.Fprint(w, "\n")
}
