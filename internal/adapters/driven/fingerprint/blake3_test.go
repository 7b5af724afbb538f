package fingerprint

import (
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSum_Empty(t *testing.T) {
	digest, err := Blake3{}.Sum(strings.NewReader(""))

	require.NoError(t, err)
	assert.Equal(t, "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262", digest)
}

func TestSum_DeterministicAndOrderSensitive(t *testing.T) {
	a1, err := Blake3{}.Sum(strings.NewReader("alpha\nbeta\n"))
	require.NoError(t, err)
	a2, err := Blake3{}.Sum(strings.NewReader("alpha\nbeta\n"))
	require.NoError(t, err)
	b, err := Blake3{}.Sum(strings.NewReader("beta\nalpha\n"))
	require.NoError(t, err)

	assert.Equal(t, a1, a2)
	assert.NotEqual(t, a1, b)
	assert.Len(t, a1, Size*2)
}

func TestSum_NoNormalisation(t *testing.T) {
	lf, err := Blake3{}.Sum(strings.NewReader("line\n"))
	require.NoError(t, err)
	crlf, err := Blake3{}.Sum(strings.NewReader("line\r\n"))
	require.NoError(t, err)

	assert.NotEqual(t, lf, crlf)
}

func TestSum_ReadError(t *testing.T) {
	_, err := Blake3{}.Sum(iotest.ErrReader(errors.New("disk gone")))

	assert.ErrorContains(t, err, "disk gone")
}
