// Package codec encodes the JSON manifests stored next to persisted
// density results.
//
// Manifests are small, so the codec choice only matters for throughput when
// many results are listed. Both built-in codecs produce standard JSON and
// can read each other's output.
package codec

import "fmt"

// Codec encodes and decodes values. Implementations must be safe for
// concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, error) {
	switch name {
	case "json":
		return JSON{}, nil
	case "go-json", "":
		return GoJSON{}, nil
	default:
		return nil, fmt.Errorf("codec: unknown codec %q", name)
	}
}
