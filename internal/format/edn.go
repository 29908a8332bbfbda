package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// WriteEDN writes an EDN rendering of v, covering the subset our CLI
// payloads need (maps, vectors, strings, numbers, booleans, nil). Structs
// are routed through JSON first so json tags decide the key names.
func WriteEDN(w io.Writer, v any, pretty bool) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var x any
	if err := json.Unmarshal(b, &x); err != nil {
		return err
	}

	var buf bytes.Buffer
	writeEDNValue(&buf, x, 0, pretty)
	buf.WriteByte('\n')
	_, err = w.Write(buf.Bytes())
	return err
}

const ednIndent = 2

func writeEDNValue(buf *bytes.Buffer, v any, level int, pretty bool) {
	switch t := v.(type) {
	case nil:
		buf.WriteString("nil")
	case bool:
		buf.WriteString(strconv.FormatBool(t))
	case string:
		buf.WriteString(strconv.Quote(t))
	case float64:
		// interface{} JSON numbers arrive as float64; print whole values
		// as integers.
		if float64(int64(t)) == t {
			buf.WriteString(strconv.FormatInt(int64(t), 10))
			return
		}
		buf.WriteString(strconv.FormatFloat(t, 'f', -1, 64))
	case []any:
		writeEDNSeq(buf, "[", "]", len(t), level, pretty, func(i int) {
			writeEDNValue(buf, t[i], level+1, pretty)
		})
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		writeEDNSeq(buf, "{", "}", len(keys), level, pretty, func(i int) {
			buf.WriteByte(':')
			buf.WriteString(strings.ReplaceAll(strings.TrimSpace(keys[i]), " ", "-"))
			buf.WriteByte(' ')
			writeEDNValue(buf, t[keys[i]], level+1, pretty)
		})
	default:
		buf.WriteString(strconv.Quote(fmt.Sprintf("%v", v)))
	}
}

func writeEDNSeq(buf *bytes.Buffer, open, closing string, n, level int, pretty bool, elem func(i int)) {
	buf.WriteString(open)
	if n == 0 {
		buf.WriteString(closing)
		return
	}
	for i := 0; i < n; i++ {
		if pretty {
			buf.WriteByte('\n')
			buf.WriteString(strings.Repeat(" ", (level+1)*ednIndent))
		} else if i > 0 {
			buf.WriteByte(' ')
		}
		elem(i)
	}
	if pretty {
		buf.WriteByte('\n')
		buf.WriteString(strings.Repeat(" ", level*ednIndent))
	}
	buf.WriteString(closing)
}
