package codec

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/dshills/inkwell/internal/engine/document"
)

// Format identifies a serialization format.
type Format int

const (
	FormatUnknown Format = iota
	FormatNative
	FormatDraftRaw
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatNative:
		return "inkwell"
	case FormatDraftRaw:
		return "draft-raw"
	}
	return "unknown"
}

// Detect sniffs the format of data without fully decoding it.
func Detect(data []byte) Format {
	if !gjson.ValidBytes(data) {
		return FormatUnknown
	}
	blocks := gjson.GetBytes(data, "blocks")
	if !blocks.IsArray() {
		return FormatUnknown
	}
	if gjson.GetBytes(data, "entityMap").Exists() || gjson.GetBytes(data, "blocks.0.key").Exists() {
		return FormatDraftRaw
	}
	return FormatNative
}

// Load decodes data in whichever format Detect reports.
func Load(data []byte, opts ...document.Option) (*document.Document, error) {
	switch Detect(data) {
	case FormatNative:
		return Unmarshal(data, opts...)
	case FormatDraftRaw:
		return UnmarshalDraftRaw(data, opts...)
	}
	return nil, corrupt("unrecognized format")
}

// ParseFormat parses a format name as written by Format.String.
// The empty string selects FormatNative.
func ParseFormat(name string) (Format, error) {
	switch name {
	case "", "inkwell", "native":
		return FormatNative, nil
	case "draft-raw", "draft":
		return FormatDraftRaw, nil
	}
	return FormatUnknown, fmt.Errorf("unknown format %q", name)
}

// Encode serializes doc in format f.
func Encode(doc *document.Document, f Format) ([]byte, error) {
	switch f {
	case FormatNative:
		return Marshal(doc)
	case FormatDraftRaw:
		return MarshalDraftRaw(doc)
	}
	return nil, fmt.Errorf("encode: unsupported format %s", f)
}
