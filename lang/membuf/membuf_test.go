package membuf_test

import (
	"testing"

	"github.com/pschiffmann/minic/lang/membuf"
	"github.com/pschiffmann/minic/lang/numeric"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadWriteRoundTrip(t *testing.T) {
	cases := []struct {
		typ numeric.Type
		val int64
	}{
		{numeric.Uint8, 200},
		{numeric.Uint16, 60000},
		{numeric.Uint32, 4000000000},
		{numeric.Sint8, -120},
		{numeric.Sint16, -30000},
		{numeric.Sint32, -2000000000},
		{numeric.Sint64, -9000000000000000000},
	}
	for _, tc := range cases {
		t.Run(tc.typ.String(), func(t *testing.T) {
			buf := membuf.New(16)
			in := numeric.FromInt64(tc.typ, tc.val)
			require.NoError(t, buf.Write(4, tc.typ, in))
			out, err := buf.Read(4, tc.typ)
			require.NoError(t, err)
			assert.Equal(t, in.Bits, out.Bits)
			assert.Equal(t, tc.val, out.Int64())
		})
	}
}

func TestWriteTruncatesUnsignedViaBitmask(t *testing.T) {
	buf := membuf.New(4)
	require.NoError(t, buf.Write(0, numeric.Uint8, numeric.FromInt64(numeric.Sint32, 300)))
	out, err := buf.Read(0, numeric.Uint8)
	require.NoError(t, err)
	assert.Equal(t, uint64(300&0xff), out.Bits)
}

func TestFloatRoundTrip(t *testing.T) {
	buf := membuf.New(8)
	in := numeric.FromFloat64(numeric.Fp64, 52.4)
	require.NoError(t, buf.Write(0, numeric.Fp64, in))
	out, err := buf.Read(0, numeric.Fp64)
	require.NoError(t, err)
	assert.InDelta(t, 52.4, out.Float64(), 1e-9)
}

func TestBigEndianByteOrder(t *testing.T) {
	buf := membuf.New(4)
	require.NoError(t, buf.Write(0, numeric.Uint32, numeric.FromUint64(numeric.Uint32, 0x01020304)))
	b, err := buf.ReadBytes(0, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, b)
}

func TestOutOfRangeRaisesRangeError(t *testing.T) {
	buf := membuf.New(4)
	_, err := buf.Read(2, numeric.Uint32)
	require.Error(t, err)
	var rangeErr *membuf.RangeError
	assert.ErrorAs(t, err, &rangeErr)
}
