package elasticsearch

import (
	"bytes"
	"compress/gzip"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestEncodeBatchBulkMode(t *testing.T) {
	mode, err := resolveMode(ModeConfig{Kind: "bulk", Bulk: BulkModeConfig{Index: "app-logs"}})
	require.NoError(t, err)

	enc := newEncoder(&Config{DocType: "_doc"}, mode, false)
	body, err := enc.EncodeBatch([][]byte{
		[]byte(`{"message":"a"}`),
		[]byte(`{"message":"b"}`),
	})
	require.NoError(t, err)

	lines := bytes.Split(bytes.TrimRight(body, "\n"), []byte("\n"))
	require.Len(t, lines, 4)

	action := gjson.ParseBytes(lines[0])
	require.Equal(t, "app-logs", action.Get("index._index").String())
	require.Equal(t, "_doc", action.Get("index._type").String())
	require.Equal(t, "a", gjson.GetBytes(lines[1], "message").String())
	require.Equal(t, "b", gjson.GetBytes(lines[3], "message").String())
}

func TestEncodeBatchSuppressesTypeName(t *testing.T) {
	mode, err := resolveMode(ModeConfig{})
	require.NoError(t, err)

	enc := newEncoder(&Config{DocType: "_doc"}, mode, true)
	body, err := enc.EncodeBatch([][]byte{[]byte(`{"message":"a"}`)})
	require.NoError(t, err)

	action := gjson.ParseBytes(bytes.Split(body, []byte("\n"))[0])
	require.False(t, action.Get("index._type").Exists())
	require.Equal(t, "logship", action.Get("index._index").String())
}

func TestEncodeBatchDataStreamMode(t *testing.T) {
	mode, err := resolveMode(ModeConfig{Kind: "data_stream"})
	require.NoError(t, err)
	require.Equal(t, "create", mode.Action())
	require.Equal(t, "logs-generic-default", mode.Index())

	enc := newEncoder(&Config{}, mode, true)
	body, err := enc.EncodeBatch([][]byte{[]byte(`{"message":"a"}`)})
	require.NoError(t, err)

	action := gjson.ParseBytes(bytes.Split(body, []byte("\n"))[0])
	require.Equal(t, "logs-generic-default", action.Get("create._index").String())
}

func TestEncodeBatchRejectsInvalidJSON(t *testing.T) {
	mode, err := resolveMode(ModeConfig{})
	require.NoError(t, err)

	enc := newEncoder(&Config{}, mode, true)
	_, err = enc.EncodeBatch([][]byte{[]byte(`{"ok":true}`), []byte(`not json`)})
	require.Error(t, err)
}

func TestEncodeBatchCompression(t *testing.T) {
	mode, err := resolveMode(ModeConfig{})
	require.NoError(t, err)

	plain := newEncoder(&Config{}, mode, true)
	compressed := newEncoder(&Config{Compression: true}, mode, true)
	require.Equal(t, "gzip", compressed.ContentEncoding())
	require.Equal(t, "", plain.ContentEncoding())

	docs := [][]byte{[]byte(`{"message":"a"}`), []byte(`{"message":"b"}`)}
	want, err := plain.EncodeBatch(docs)
	require.NoError(t, err)

	body, err := compressed.EncodeBatch(docs)
	require.NoError(t, err)

	zr, err := gzip.NewReader(bytes.NewReader(body))
	require.NoError(t, err)
	got, err := io.ReadAll(zr)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestResolveModeValidation(t *testing.T) {
	_, err := resolveMode(ModeConfig{Kind: "bulk", Bulk: BulkModeConfig{Action: "upsert"}})
	require.Error(t, err)

	_, err = resolveMode(ModeConfig{Kind: "stream"})
	require.Error(t, err)

	mode, err := resolveMode(ModeConfig{Kind: "bulk", Bulk: BulkModeConfig{Action: "create", Index: "x"}})
	require.NoError(t, err)
	require.Equal(t, "create", mode.Action())
	require.Equal(t, "x", mode.Index())
}
