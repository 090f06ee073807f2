package family

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClassifier() *Classifier {
	return NewClassifier(Markers{
		Merged:      "IDOLServer",
		SDK:         []string{"SDK"},
		SDKSuffixes: []string{"_API"},
	})
}

func TestClassify(t *testing.T) {
	c := testClassifier()

	tests := []struct {
		name    string
		unit    string
		want    Family
		matched bool
	}{
		{"merged marker", "IDOLServer_25.4_Documentation", Merged, true},
		{"merged marker mid-name", "Legacy_IDOLServer", Merged, true},
		{"sdk substring", "IDOLJavaSDK_25.4_Documentation", SDK, true},
		{"sdk suffix", "ACI_API", SDK, true},
		{"plain unit", "Content_25.4_Documentation", Standard, false},
		{"case sensitive", "idolserver_docs", Standard, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, matched := c.Match(tt.unit)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.matched, matched)
			assert.Equal(t, tt.want, c.Classify(tt.unit))
		})
	}
}

func TestClassify_MergedWinsOverSDK(t *testing.T) {
	c := testClassifier()
	assert.Equal(t, Merged, c.Classify("IDOLServerSDK"))
}

func TestClassify_EmptyMarkersNeverMatch(t *testing.T) {
	c := NewClassifier(Markers{SDK: []string{""}, SDKSuffixes: []string{""}})
	got, matched := c.Match("anything")
	assert.Equal(t, Standard, got)
	assert.False(t, matched)
}

func TestParseFamily(t *testing.T) {
	for _, f := range []Family{Standard, SDK, Merged} {
		got, err := ParseFamily(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}

	got, err := ParseFamily(" Merged ")
	require.NoError(t, err)
	assert.Equal(t, Merged, got)

	_, err = ParseFamily("wiki")
	require.Error(t, err)
}
