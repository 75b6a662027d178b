package codec

import "testing"

func benchmarkCodecMarshal(b *testing.B, c Codec, v any) {
	b.Helper()
	b.ReportAllocs()

	warm, err := c.Marshal(v)
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(len(warm)))

	var sink []byte
	b.ResetTimer()
	for b.Loop() {
		out, err := c.Marshal(v)
		if err != nil {
			b.Fatal(err)
		}
		sink = out
	}
	_ = sink
}

func benchmarkCodecUnmarshal[T any](b *testing.B, c Codec, data []byte, dst *T) {
	b.Helper()
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))

	var v T
	b.ResetTimer()
	for b.Loop() {
		if err := c.Unmarshal(data, &v); err != nil {
			b.Fatal(err)
		}
	}
	if dst != nil {
		*dst = v
	}
}

func BenchmarkCodec_Marshal_Manifest(b *testing.B) {
	m := sample()
	b.Run("stdlib", func(b *testing.B) { benchmarkCodecMarshal(b, JSON{}, m) })
	b.Run("go-json", func(b *testing.B) { benchmarkCodecMarshal(b, GoJSON{}, m) })
}

func BenchmarkCodec_Unmarshal_Manifest(b *testing.B) {
	data, err := JSON{}.Marshal(sample())
	if err != nil {
		b.Fatal(err)
	}

	b.Run("stdlib", func(b *testing.B) { benchmarkCodecUnmarshal[manifest](b, JSON{}, data, nil) })
	b.Run("go-json", func(b *testing.B) { benchmarkCodecUnmarshal[manifest](b, GoJSON{}, data, nil) })
}
