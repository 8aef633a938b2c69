package facility

import (
	"bytes"
	"encoding/json"
	"io"
	"io/ioutil"
)

// Unit is one decoded record together with the raw bytes it was decoded from.
// Raw is kept so a filter can re-emit the record with its original fields
// unmodified rather than a lossy re-projection through the struct.
type Unit struct {
	Raw    json.RawMessage
	Record FacilityRecord
}

// Line renders the unit as one compact NDJSON line (no trailing newline).
func (u Unit) Line() []byte {
	var buf bytes.Buffer
	if err := json.Compact(&buf, u.Raw); err != nil { // raw already decoded once, so this cannot realistically fail...
		return u.Raw
	}
	return buf.Bytes()
}

// DecodeAll parses a byte stream of facility records without being told which
// of the supported encodings is present: a single JSON object, a JSON array
// of objects, newline-delimited objects, or whitespace-concatenated objects.
// Decoding proceeds by incremental tokenization - decode one value at the
// current offset, advance past the consumed bytes, repeat. A top-level array
// is iterated element-wise instead of being treated as one record.
//
// Malformed units are skipped, not fatal: after a decode error the scan
// resumes at the byte after the next newline, and the skipped count is
// returned alongside the good records. A malformed unit in newline-free
// input abandons the remainder of the stream as one skipped unit.
func DecodeAll(r io.Reader) (units []Unit, skipped int, err error) {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, 0, err
	}
	units = make([]Unit, 0)
	offset := 0
	for {
		offset = skipSpace(data, offset)
		if offset >= len(data) {
			break
		}
		if data[offset] == '[' { // if the value at this offset is an array, iterate its elements...
			consumed, s := decodeArray(data[offset:], &units)
			skipped += s
			if consumed <= 0 { // if the array was malformed...
				offset = resync(data, offset)
				continue
			}
			offset += consumed
			continue
		}
		var raw json.RawMessage
		dec := json.NewDecoder(bytes.NewReader(data[offset:]))
		if err := dec.Decode(&raw); err != nil { // if this unit is malformed...
			skipped++
			offset = resync(data, offset)
			continue
		}
		if !addUnit(raw, &units) {
			skipped++
		}
		offset += int(dec.InputOffset())
	}
	return units, skipped, nil
}

// decodeArray decodes one top-level JSON array starting at data[0], appending
// each well-formed object element as a unit. It returns the number of bytes
// consumed, or 0 with skipped=1 when the array cannot be fully tokenized.
func decodeArray(data []byte, units *[]Unit) (consumed int, skipped int) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil { // consume the opening bracket...
		return 0, 1
	}
	for dec.More() {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil { // if an element is malformed the rest of the array is unreachable...
			return 0, 1
		}
		if !addUnit(raw, units) {
			skipped++
		}
	}
	if _, err := dec.Token(); err != nil { // consume the closing bracket...
		return 0, skipped + 1
	}
	return int(dec.InputOffset()), skipped
}

// addUnit unmarshals raw into a FacilityRecord and appends it.
// Non-object values (numbers, strings, nested arrays) are rejected.
func addUnit(raw json.RawMessage, units *[]Unit) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return false
	}
	var rec FacilityRecord
	if err := json.Unmarshal(trimmed, &rec); err != nil {
		return false
	}
	*units = append(*units, Unit{Raw: append(json.RawMessage(nil), trimmed...), Record: rec})
	return true
}

// skipSpace advances offset past insignificant whitespace between values.
func skipSpace(data []byte, offset int) int {
	for offset < len(data) {
		switch data[offset] {
		case ' ', '\t', '\r', '\n':
			offset++
		default:
			return offset
		}
	}
	return offset
}

// resync moves the scan position to the byte after the next newline so one
// malformed unit doesn't poison the rest of a line-structured stream.
func resync(data []byte, offset int) int {
	idx := bytes.IndexByte(data[offset:], '\n')
	if idx < 0 {
		return len(data)
	}
	return offset + idx + 1
}
