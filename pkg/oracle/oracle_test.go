package oracle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/carryon/pkg/errors"
)

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", ` {"a":1} `, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n[1,2]\n```\n", `[1,2]`},
		{"unterminated fence", "```json\n{\"a\":1}", `{"a":1}`},
		{"fence only", "```", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripCodeFence(tt.input))
		})
	}
}

func TestDecodeStrict(t *testing.T) {
	type rec struct {
		A int `json:"a"`
	}

	var r rec
	require.NoError(t, DecodeStrict("```json\n{\"a\": 3}\n```", "test", &r))
	assert.Equal(t, 3, r.A)

	bad := []string{
		``,
		`not json`,
		`{"a": 1, "b": 2}`,
		`{"a": 1} {"a": 2}`,
		`{"a": "one"}`,
		`[{"a": 1}]`,
	}
	for _, input := range bad {
		err := DecodeStrict(input, "test", &r)
		assert.Error(t, err, input)
		assert.True(t, errors.IsMalformedReply(err), input)
	}
}

func TestUnavailable(t *testing.T) {
	_, err := Unavailable.Generate(context.Background(), Request{Kind: KindItem})
	assert.True(t, errors.IsOracleUnavailable(err))
}

func TestWithTimeout(t *testing.T) {
	slow := Func(func(ctx context.Context, _ Request) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})

	_, err := WithTimeout(slow, 10*time.Millisecond).Generate(context.Background(), Request{})
	assert.ErrorIs(t, err, errors.ErrTimeout)

	fast := Func(func(context.Context, Request) (string, error) { return "ok", nil })
	reply, err := WithTimeout(fast, time.Second).Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "ok", reply)

	assert.NotNil(t, WithTimeout(fast, 0))
}
