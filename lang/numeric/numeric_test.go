package numeric_test

import (
	"testing"

	"github.com/pschiffmann/minic/lang/numeric"
	"github.com/stretchr/testify/assert"
)

func TestBitmask(t *testing.T) {
	assert.Equal(t, uint64(0xff), numeric.Uint8.Bitmask())
	assert.Equal(t, uint64(0xffff), numeric.Uint16.Bitmask())
	assert.Equal(t, uint64(0xffffffff), numeric.Uint32.Bitmask())
	assert.Equal(t, uint64(0xffffffffffffffff), numeric.Uint64.Bitmask())
}

func TestCastIdentityIsNoop(t *testing.T) {
	for _, typ := range numeric.All {
		n := numeric.FromInt64(typ, 7)
		if typ.IsFloat() {
			n = numeric.FromFloat64(typ, 7)
		}
		got := numeric.Cast(n, typ)
		assert.Equal(t, n, got, "cast<%s:%s> should be identity", typ, typ)
	}
}

func TestCastFloatToIntTruncatesTowardZero(t *testing.T) {
	f := numeric.FromFloat64(numeric.Fp32, 52.4)
	i := numeric.Cast(f, numeric.Sint32)
	assert.Equal(t, int64(52), i.Int64())

	fneg := numeric.FromFloat64(numeric.Fp32, -52.9)
	ineg := numeric.Cast(fneg, numeric.Sint32)
	assert.Equal(t, int64(-52), ineg.Int64())
}

func TestSignExtension(t *testing.T) {
	n := numeric.FromInt64(numeric.Sint8, -1)
	assert.Equal(t, int64(-1), n.Int64())
	assert.Equal(t, uint64(0xff), n.Bits)
}

func TestUint64ToFloat64PreservesExactIntegersBelow2Pow53(t *testing.T) {
	const v = uint64(1) << 52
	n := numeric.FromUint64(numeric.Uint64, v)
	assert.Equal(t, float64(v), n.Float64())
}
