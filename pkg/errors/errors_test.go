package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorString(t *testing.T) {
	err := New(ErrorTypeFetch, "download failed")
	assert.Equal(t, "fetch error: download failed", err.Error())

	withCode := &Error{Type: ErrorTypeServer, Message: "bad gateway", Code: 502}
	assert.Equal(t, "server_error error (code 502): bad gateway", withCode.Error())
}

func TestWrap(t *testing.T) {
	underlying := stderrors.New("connection refused")
	err := Wrap(ErrorTypeNetwork, underlying)

	assert.Equal(t, ErrorTypeNetwork, err.Type)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestIsFatal(t *testing.T) {
	assert.True(t, IsFatal(ErrorTypeDiscovery))

	for _, et := range []ErrorType{
		ErrorTypeSubPage,
		ErrorTypeFetch,
		ErrorTypeExtraction,
		ErrorTypeStorage,
		ErrorTypeNetwork,
		ErrorTypeServer,
		ErrorTypeUnknown,
	} {
		assert.False(t, IsFatal(et), string(et))
	}
}
