package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert_WideningAndNarrowing(t *testing.T) {
	in := NewInterner()
	for _, tc := range []struct {
		name     string
		from, to Primitive
		want     ConvertResult
	}{
		{"byte to word extends", SignedByte, SignedWord, ConvertExtend},
		{"word to byte truncates", SignedWord, SignedByte, ConvertTruncate},
		{"byte to unsigned byte same size", SignedByte, UnsignedByte, ConvertSameSize},
		{"identical types are a no-op", SignedWord, SignedWord, ConvertNone},
	} {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Convert(in.Primitive(tc.from), in.Primitive(tc.to))
			require.NoError(t, err)
			assert.Equal(t, tc.want, res)
		})
	}
}

func TestConvert_StringIsNeverImplicitlyCompatible(t *testing.T) {
	in := NewInterner()
	_, err := Convert(in.Primitive(String), in.Primitive(SignedWord))
	require.Error(t, err)
	var incompat IncompatibleError
	assert.ErrorAs(t, err, &incompat)
}

func TestConvert_ArrayOrStructNeverConverts(t *testing.T) {
	in := NewInterner()
	arr, err := in.Array(0, 3, in.Primitive(SignedByte))
	require.NoError(t, err)
	_, err = Convert(arr, in.Primitive(SignedWord))
	assert.Error(t, err)
}

func TestBinaryResultType_EqualWidthPrefersSigned(t *testing.T) {
	in := NewInterner()
	res, err := BinaryResultType(in, in.Primitive(SignedByte), in.Primitive(UnsignedByte))
	require.NoError(t, err)
	assert.Equal(t, SignedByte, res.Prim)
}

func TestBinaryResultType_MixedWidthFollowsWider(t *testing.T) {
	in := NewInterner()
	res, err := BinaryResultType(in, in.Primitive(SignedByte), in.Primitive(SignedDword))
	require.NoError(t, err)
	assert.Equal(t, SignedDword, res.Prim)
}

func TestBinaryResultType_RejectsNonIntegerOperand(t *testing.T) {
	in := NewInterner()
	_, err := BinaryResultType(in, in.Primitive(String), in.Primitive(SignedWord))
	assert.Error(t, err)
}
