package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manifest struct {
	Name      string            `json:"name"`
	Queries   int               `json:"queries"`
	RelError  float64           `json:"rel_error"`
	Kernel    string            `json:"kernel"`
	Labels    map[string]string `json:"labels,omitempty"`
	Approx    []uint32          `json:"approximated"`
	BaseCases uint64            `json:"base_cases"`
}

func sample() manifest {
	return manifest{
		Name:      "nightly",
		Queries:   1200,
		RelError:  0.05,
		Kernel:    "gaussian",
		Labels:    map[string]string{"dataset": "sensors"},
		Approx:    []uint32{1, 5, 9},
		BaseCases: 1 << 40,
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"json", "go-json"} {
		c, err := ByName(name)
		require.NoError(t, err)
		assert.Equal(t, name, c.Name())
	}

	c, err := ByName("")
	require.NoError(t, err)
	assert.Equal(t, Default.Name(), c.Name())

	_, err = ByName("msgpack")
	assert.Error(t, err)
}

func TestCodecs_Interoperate(t *testing.T) {
	codecs := []Codec{JSON{}, GoJSON{}}
	for _, enc := range codecs {
		data, err := enc.Marshal(sample())
		require.NoError(t, err)
		for _, dec := range codecs {
			var got manifest
			require.NoError(t, dec.Unmarshal(data, &got), "%s -> %s", enc.Name(), dec.Name())
			assert.Equal(t, sample(), got)
		}
	}
}

func TestGoJSON_MarshalIndent(t *testing.T) {
	data, err := GoJSON{}.MarshalIndent(map[string]int{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": 1\n}", string(data))
}

func TestUnmarshal_Invalid(t *testing.T) {
	var m manifest
	assert.Error(t, JSON{}.Unmarshal([]byte("{"), &m))
	assert.Error(t, GoJSON{}.Unmarshal([]byte("{"), &m))
}
