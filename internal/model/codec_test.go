package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphtrust/internal/features"
	"graphtrust/pkg/platform/sentinel"
)

func TestCodec(t *testing.T) {
	samples := GenerateSynthetic(30, newRand(9))
	f, err := FitForest(context.Background(), samples, ForestConfig{Trees: 5}, 9)
	require.NoError(t, err)

	blob, err := Encode(f)
	require.NoError(t, err)

	t.Run("decoded forest predicts identically", func(t *testing.T) {
		decoded, err := Decode(blob)
		require.NoError(t, err)
		v := features.Vector{Degree: 12, DeviceLinks: 2, FlaggedLinks: 1}
		assert.Equal(t, f.Predict(v), decoded.Predict(v))
	})

	corrupt := map[string]string{
		"not json":             `{"format":`,
		"wrong format":         `{"format":2,"dimensions":3,"trees":[[{"f":0,"t":0,"l":-1,"r":-1,"v":1}]]}`,
		"wrong dimensions":     `{"format":1,"dimensions":4,"trees":[[{"f":0,"t":0,"l":-1,"r":-1,"v":1}]]}`,
		"no trees":             `{"format":1,"dimensions":3,"trees":[]}`,
		"empty tree":           `{"format":1,"dimensions":3,"trees":[[]]}`,
		"cycle":                `{"format":1,"dimensions":3,"trees":[[{"f":0,"t":1,"l":0,"r":0,"v":1}]]}`,
		"child out of range":   `{"format":1,"dimensions":3,"trees":[[{"f":0,"t":1,"l":1,"r":5,"v":1},{"l":-1,"r":-1}]]}`,
		"feature out of range": `{"format":1,"dimensions":3,"trees":[[{"f":7,"t":1,"l":1,"r":2,"v":1},{"l":-1,"r":-1},{"l":-1,"r":-1}]]}`,
		"half leaf":            `{"format":1,"dimensions":3,"trees":[[{"f":0,"t":1,"l":-1,"r":1,"v":1},{"l":-1,"r":-1}]]}`,
	}
	for name, raw := range corrupt {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(raw))
			require.ErrorIs(t, err, sentinel.ErrCorrupt)
		})
	}
}

func TestChecksum(t *testing.T) {
	assert.Equal(t, Checksum([]byte("a")), Checksum([]byte("a")))
	assert.NotEqual(t, Checksum([]byte("a")), Checksum([]byte("b")))
	assert.Len(t, Checksum(nil), 64)
}
