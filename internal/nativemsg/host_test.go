package nativemsg

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"io"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoDispatcher struct{}

func (echoDispatcher) Dispatch(_ context.Context, raw []byte) router.Response {
	var req router.Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return router.Response{Error: "invalid json"}
	}
	return router.Response{ID: req.ID, OK: req.Type == "ping", Network: req.Type}
}

func frame(t *testing.T, v any) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	require.NoError(t, WriteFrame(w, v))
	return buf.Bytes()
}

func readResponses(t *testing.T, b []byte) []router.Response {
	t.Helper()
	r := bufio.NewReader(bytes.NewReader(b))
	var out []router.Response
	for {
		payload, err := ReadFrame(r)
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
		var resp router.Response
		require.NoError(t, json.Unmarshal(payload, &resp))
		out = append(out, resp)
	}
}

func TestFrameRoundTripHeader(t *testing.T) {
	b := frame(t, map[string]string{"type": "ping"})
	require.GreaterOrEqual(t, len(b), 4)
	assert.EqualValues(t, len(b)-4, binary.LittleEndian.Uint32(b[:4]))

	payload, err := ReadFrame(bufio.NewReader(bytes.NewReader(b)))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"ping"}`, string(payload))
}

func TestReadFrameRejectsOversize(t *testing.T) {
	var header [4]byte
	binary.LittleEndian.PutUint32(header[:], MaxFrameSize+1)
	_, err := ReadFrame(bufio.NewReader(bytes.NewReader(header[:])))
	assert.True(t, errors.Is(err, ErrFrameTooLarge))
}

func TestReadFrameTruncatedPayload(t *testing.T) {
	var header [4]byte
	binary.LittleEndian.PutUint32(header[:], 10)
	_, err := ReadFrame(bufio.NewReader(bytes.NewReader(append(header[:], 'x'))))
	require.Error(t, err)
	assert.False(t, errors.Is(err, io.EOF))
}

func TestServeAnswersInOrder(t *testing.T) {
	var in bytes.Buffer
	in.Write(frame(t, router.Request{ID: "1", Type: "ping"}))
	in.Write(frame(t, router.Request{ID: "2", Type: "other"}))
	in.Write(frame(t, router.Request{ID: "3", Type: "ping"}))

	var out bytes.Buffer
	require.NoError(t, NewHost(echoDispatcher{}).Serve(context.Background(), &in, &out))

	resps := readResponses(t, out.Bytes())
	require.Len(t, resps, 3)
	assert.Equal(t, "1", resps[0].ID)
	assert.True(t, resps[0].OK)
	assert.Equal(t, "2", resps[1].ID)
	assert.False(t, resps[1].OK)
	assert.Equal(t, "3", resps[2].ID)
}

func TestServeConcurrentAnswersEveryRequest(t *testing.T) {
	var in bytes.Buffer
	for i := 0; i < 20; i++ {
		in.Write(frame(t, router.Request{ID: string(rune('a' + i)), Type: "ping"}))
	}

	var out bytes.Buffer
	require.NoError(t, NewHost(echoDispatcher{}, WithInflight(4)).Serve(context.Background(), &in, &out))

	seen := map[string]bool{}
	for _, r := range readResponses(t, out.Bytes()) {
		seen[r.ID] = true
	}
	assert.Len(t, seen, 20)
}

func TestServeReportsBrokenStream(t *testing.T) {
	var header [4]byte
	binary.LittleEndian.PutUint32(header[:], MaxFrameSize+1)

	var out bytes.Buffer
	err := NewHost(echoDispatcher{}).Serve(context.Background(), bytes.NewReader(header[:]), &out)
	assert.True(t, errors.Is(err, ErrFrameTooLarge))
	assert.Zero(t, out.Len())
}
