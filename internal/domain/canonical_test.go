package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_SortsKeysAndDropsWhitespace(t *testing.T) {
	got, err := MarshalCanonical(map[string]any{
		"b": 1,
		"a": []any{true, nil, "x"},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"a":[true,null,"x"],"b":1}`, string(got))
}

func TestMarshalCanonical_NoHTMLEscaping(t *testing.T) {
	got, err := MarshalCanonical(map[string]any{"s": "<a&b>"})
	require.NoError(t, err)
	assert.Equal(t, `{"s":"<a&b>"}`, string(got))
}

func TestMarshalCanonical_NFCNormalizes(t *testing.T) {
	decomposed := "e\u0301"
	composed := "\u00e9"

	a, err := MarshalCanonical(map[string]any{"name": decomposed})
	require.NoError(t, err)
	b, err := MarshalCanonical(map[string]any{"name": composed})
	require.NoError(t, err)
	assert.Equal(t, string(b), string(a))
}

func TestMarshalCanonical_StructTags(t *testing.T) {
	got, err := MarshalCanonical(JournalLine{AccountID: "1001", Debit: decimal.NewFromInt(5)})
	require.NoError(t, err)
	assert.Equal(t, `{"accountId":"1001","credit":"0","debit":"5"}`, string(got))
}

func TestDigest_StableAcrossKeyOrder(t *testing.T) {
	d1, err := Digest(DomainOutboxPayload, map[string]any{"x": 1, "y": 2})
	require.NoError(t, err)
	d2, err := Digest(DomainOutboxPayload, map[string]any{"y": 2, "x": 1})
	require.NoError(t, err)
	assert.Equal(t, d1, d2)
	assert.Len(t, d1, 64)
}

func TestDigest_DomainSeparated(t *testing.T) {
	d1, err := Digest(DomainOutboxPayload, "same")
	require.NoError(t, err)
	d2, err := Digest(DomainSnapshot, "same")
	require.NoError(t, err)
	assert.NotEqual(t, d1, d2)
}

func TestLessUTF16(t *testing.T) {
	// Surrogate pairs (0xD83D...) sort below 0xFF61, unlike their UTF-8 bytes.
	assert.True(t, lessUTF16("a", "b"))
	assert.True(t, lessUTF16("a", "ab"))
	assert.True(t, lessUTF16("\U0001F600", "｡"))
}
