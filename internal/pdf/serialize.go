package pdf

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strconv"

	pdflib "github.com/digitorus/pdf"
)

// Ref identifies an indirect object.
type Ref struct {
	ID  uint32
	Gen uint16
}

func (r Ref) String() string {
	return strconv.FormatUint(uint64(r.ID), 10) + " " + strconv.FormatUint(uint64(r.Gen), 10) + " R"
}

// RefOf returns the object that holds v. For direct values this is the
// enclosing indirect object.
func RefOf(v pdflib.Value) Ref {
	ptr := v.GetPtr()
	return Ref{ID: uint32(ptr.GetID()), Gen: uint16(ptr.GetGen())}
}

// RefFunc decides how an indirect reference found while serializing is written.
type RefFunc func(v pdflib.Value) (string, error)

// KeepRef writes references to objects of the same document unchanged.
func KeepRef(v pdflib.Value) (string, error) {
	return RefOf(v).String(), nil
}

// WriteValue serializes v in PDF syntax. Values held by an object other than
// parent are treated as indirect and handed to ref.
func WriteValue(buf *bytes.Buffer, parent Ref, v pdflib.Value, ref RefFunc) error {
	if own := RefOf(v); own != parent && own.ID != 0 {
		s, err := ref(v)
		if err != nil {
			return err
		}
		buf.WriteString(s)
		return nil
	}
	return WriteDirect(buf, parent, v, ref)
}

// WriteDirect serializes v inline, recursing into arrays and dictionaries.
// Streams cannot be written inline.
func WriteDirect(buf *bytes.Buffer, parent Ref, v pdflib.Value, ref RefFunc) error {
	switch v.Kind() {
	case pdflib.Null:
		buf.WriteString("null")
	case pdflib.Bool:
		buf.WriteString(strconv.FormatBool(v.Bool()))
	case pdflib.Integer:
		buf.WriteString(strconv.FormatInt(v.Int64(), 10))
	case pdflib.Real:
		buf.WriteString(FormatReal(v.Float64()))
	case pdflib.String:
		buf.WriteString(HexString(v.RawString()))
	case pdflib.Name:
		buf.WriteString(Name(v.Name()))
	case pdflib.Array:
		buf.WriteString("[")
		for i := 0; i < v.Len(); i++ {
			if i > 0 {
				buf.WriteString(" ")
			}
			if err := WriteValue(buf, parent, v.Index(i), ref); err != nil {
				return err
			}
		}
		buf.WriteString("]")
	case pdflib.Dict:
		return WriteDict(buf, parent, v, ref, nil)
	case pdflib.Stream:
		return fmt.Errorf("stream in object %d cannot be written as a direct value", parent.ID)
	default:
		return fmt.Errorf("unsupported value kind %v", v.Kind())
	}
	return nil
}

// WriteDict serializes the entries of a dictionary (or stream header),
// omitting the keys listed in skip.
func WriteDict(buf *bytes.Buffer, parent Ref, v pdflib.Value, ref RefFunc, skip map[string]bool) error {
	buf.WriteString("<<")
	for _, key := range v.Keys() {
		if skip[key] {
			continue
		}
		buf.WriteString(" ")
		buf.WriteString(Name(key))
		buf.WriteString(" ")
		if err := WriteValue(buf, parent, v.Key(key), ref); err != nil {
			return fmt.Errorf("key /%s: %w", key, err)
		}
	}
	buf.WriteString(" >>")
	return nil
}

// FormatReal formats a number without exponent notation.
func FormatReal(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// HexString encodes raw string bytes as a PDF hexadecimal string, which keeps
// any existing encoding (PDFDocEncoding or UTF-16BE with BOM) intact.
func HexString(raw string) string {
	return "<" + hex.EncodeToString([]byte(raw)) + ">"
}

// Name encodes a PDF name, escaping delimiters and non-regular bytes.
func Name(s string) string {
	var b bytes.Buffer
	b.WriteByte('/')
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '!' || c > '~' || bytes.IndexByte([]byte("()<>[]{}/%#"), c) >= 0 {
			fmt.Fprintf(&b, "#%02X", c)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
