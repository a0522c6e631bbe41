// Package codec serializes Inkwell documents.
//
// The native format is JSON:
//
//	{"blocks": [{"id": "…", "type": "paragraph",
//	             "runs": [{"text": "Hello", "styles": ["BOLD"]}]}]}
//
// Marshal writes styles sorted and merges nothing; Unmarshal validates the
// structure and merges adjacent runs that share a style set. Any
// structural problem is reported as document.ErrCorruptState.
//
// The package also reads and writes the Draft.js raw content format
// (blocks with key, text, type and UTF-16 inlineStyleRanges), so content
// saved under the "draftContent" key by a browser editor can be imported.
// Detect sniffs which format a payload is in and Load dispatches on it.
package codec
