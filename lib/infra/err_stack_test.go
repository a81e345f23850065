package infra

import (
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

var initPC = caller()

func caller() Frame {
	var PCs [3]uintptr
	n := runtime.Callers(2, PCs[:])
	frames := runtime.CallersFrames(PCs[:n])
	frame, _ := frames.Next()
	return Frame(frame.PC)
}

func TestFrameFormat(t *testing.T) {
	testcases := []struct {
		Frame
		format string
		want   func(string) bool
	}{
		{
			initPC,
			"%s",
			func(s string) bool { return s == "err_stack_test.go" },
		},
		{
			initPC,
			"%+s",
			func(s string) bool {
				return strings.HasPrefix(s, "github.com/benz9527/xstl/lib/infra.init\n\t") &&
					strings.HasSuffix(s, "err_stack_test.go")
			},
		},
		{
			initPC,
			"%n",
			func(s string) bool { return s == "init" },
		},
		{
			initPC,
			"%d",
			func(s string) bool { return s == "15" },
		},
		{
			initPC,
			"%v",
			func(s string) bool { return s == "err_stack_test.go:15" },
		},
		{
			Frame(0),
			"%s",
			func(s string) bool { return s == "unknownFile" },
		},
		{
			Frame(0),
			"%n",
			func(s string) bool { return s == "unknownFunc" },
		},
		{
			Frame(0),
			"%d",
			func(s string) bool { return s == "0" },
		},
	}

	for _, tc := range testcases {
		frameRes := fmt.Sprintf(tc.format, tc.Frame)
		require.True(t, tc.want(frameRes), "format %q got %q", tc.format, frameRes)
	}
}

func TestFrameMarshalText(t *testing.T) {
	_bytes, err := initPC.MarshalText()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(_bytes), "github.com/benz9527/xstl/lib/infra.init "))
	require.True(t, strings.HasSuffix(string(_bytes), "err_stack_test.go:15"))

	_bytes, err = Frame(0).MarshalText()
	require.NoError(t, err)
	require.Equal(t, "unknownFrame", string(_bytes))
}

func TestFrameMarshalJSON(t *testing.T) {
	_bytes, err := json.Marshal(Frame(0))
	require.NoError(t, err)
	require.Equal(t, "{\"frame\":\"unknownFrame\"}", string(_bytes))

	_bytes, err = json.Marshal(initPC)
	require.NoError(t, err)
	res := map[string]string{}
	require.NoError(t, json.Unmarshal(_bytes, &res))
	require.Equal(t, "github.com/benz9527/xstl/lib/infra.init", res["func"])
	require.True(t, strings.HasSuffix(res["fileAndLine"], "err_stack_test.go:15"))
}

var errSentinel = errors.New("sentinel")

func TestErrorStack(t *testing.T) {
	err := NewErrorStack("[infra] plain")
	require.Equal(t, "[infra] plain", err.Error())
	es, ok := err.(ErrorStack)
	require.True(t, ok)
	require.NotEmpty(t, es.Frames())
	require.Equal(t, "TestErrorStack", fmt.Sprintf("%n", es.Frames()[0]))

	err = WrapErrorStackWithMessage(errSentinel, "[infra] wrapped")
	require.Equal(t, "[infra] wrapped: sentinel", err.Error())
	require.ErrorIs(t, err, errSentinel)
	require.True(t, strings.HasPrefix(fmt.Sprintf("%+v", err), "[infra] wrapped: sentinel\n"))

	err = WrapErrorStack(errSentinel)
	require.Equal(t, "sentinel", err.Error())
	require.ErrorIs(t, err, errSentinel)

	require.Nil(t, WrapErrorStack(nil))
	require.Nil(t, WrapErrorStackWithMessage(nil, "nothing"))
}

func TestErrorStackMarshalLogObject(t *testing.T) {
	err := WrapErrorStackWithMessage(errSentinel, "[infra] log")
	enc := zapcore.NewMapObjectEncoder()
	require.NoError(t, err.(ErrorStack).MarshalLogObject(enc))
	require.Equal(t, "[infra] log: sentinel", enc.Fields["error"])
	frames, ok := enc.Fields["errorStack"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, frames)
}
