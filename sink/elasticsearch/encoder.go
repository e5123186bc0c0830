package elasticsearch

import (
	"bytes"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Encoder is the request-encoding profile of a descriptor. It turns JSON
// documents into a newline-delimited bulk request body.
type Encoder struct {
	// DocType is written as the _type of every bulk action. Only meaningful
	// for API versions that still carry mapping types.
	DocType string
	// SuppressTypeName drops the legacy _type field from action metadata.
	SuppressTypeName bool
	// Compression gzips the finished body.
	Compression bool

	mode Mode
	gzip *gzipCompressor
}

func newEncoder(cfg *Config, mode Mode, suppressTypeName bool) Encoder {
	e := Encoder{
		DocType:          cfg.DocType,
		SuppressTypeName: suppressTypeName,
		Compression:      cfg.Compression,
		mode:             mode,
	}
	if e.Compression {
		e.gzip = newGzipCompressor()
	}
	return e
}

// EncodeBatch builds the bulk request body for the given JSON documents.
// Documents that are not valid JSON fail the whole batch; a malformed line
// would otherwise poison every following action in the bulk payload.
func (e Encoder) EncodeBatch(docs [][]byte) ([]byte, error) {
	action, err := e.actionLine()
	if err != nil {
		return nil, err
	}

	var body bytes.Buffer
	for i, doc := range docs {
		doc = bytes.TrimSpace(doc)
		if !gjson.ValidBytes(doc) {
			return nil, fmt.Errorf("document %d is not valid JSON", i)
		}
		body.Write(action)
		body.WriteByte('\n')
		body.Write(doc)
		body.WriteByte('\n')
	}

	if e.Compression {
		return e.gzip.compress(body.Bytes())
	}
	return body.Bytes(), nil
}

// actionLine builds the action metadata line shared by every document of a
// batch.
func (e Encoder) actionLine() ([]byte, error) {
	action, err := sjson.SetBytes([]byte(`{}`), e.mode.Action()+"._index", e.mode.Index())
	if err != nil {
		return nil, err
	}
	if !e.SuppressTypeName && e.DocType != "" {
		action, err = sjson.SetBytes(action, e.mode.Action()+"._type", e.DocType)
		if err != nil {
			return nil, err
		}
	}
	return action, nil
}

// ContentEncoding is the value of the Content-Encoding header bulk requests
// must carry, or an empty string.
func (e Encoder) ContentEncoding() string {
	if e.Compression {
		return "gzip"
	}
	return ""
}
