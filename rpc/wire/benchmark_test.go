package wire

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"testing"
)

// benchmarkRequests returns a set of requests for targeted benchmarking
func benchmarkRequests() map[string]*Request {
	return map[string]*Request{
		"GetSmallKey": NewGetRequest("k"),
		"GetMediumKey": NewGetRequest(
			"medium-length-key-for-testing",
		),
		"GetLargeKey": NewGetRequest(
			"this-is-a-very-large-key-that-could-be-used-for-storing-data-or-as-a-document-id-in-some-cases",
		),
		"PutSmallValue": NewPutRequest("key", []byte("v")),
		"PutMediumValue": NewPutRequest(
			"key",
			[]byte("medium length value for testing serialization"),
		),
		"PutLargeValue":     NewPutRequest("key", make([]byte, 1024)),      // 1KB of data
		"PutVeryLargeValue": NewPutRequest("key", make([]byte, 1024*16)),   // 16KB of data
		"Del":               NewDelRequest("key-scheduled-for-deletion"),
	}
}

// benchmarkResponses returns a set of responses for targeted benchmarking
func benchmarkResponses() map[string]*Response {
	return map[string]*Response{
		"OKEmpty":      NewOKResponse("", nil),
		"OKSmall":      NewOKResponse("key", []byte("v")),
		"OKLargeValue": NewOKResponse("key", make([]byte, 1024*16)), // 16KB of data
		"NotFound":     NewNotFoundResponse("missing-key"),
		"NotImpl":      NewNotImplResponse(),
	}
}

// BenchmarkRequestMarshal benchmarks request encoding for various shapes
func BenchmarkRequestMarshal(b *testing.B) {
	for name, req := range benchmarkRequests() {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = req.Marshal()
			}
		})
	}
}

// BenchmarkRequestUnmarshal benchmarks request decoding for various shapes
func BenchmarkRequestUnmarshal(b *testing.B) {
	for name, req := range benchmarkRequests() {
		data := req.Marshal()

		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				var decoded Request
				if err := decoded.Unmarshal(data); err != nil {
					b.Fatalf("Failed to unmarshal: %v", err)
				}
			}
		})
	}
}

// BenchmarkResponseMarshal benchmarks response encoding for various shapes
func BenchmarkResponseMarshal(b *testing.B) {
	for name, resp := range benchmarkResponses() {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = resp.Marshal()
			}
		})
	}
}

// BenchmarkResponseUnmarshal benchmarks response decoding for various shapes
func BenchmarkResponseUnmarshal(b *testing.B) {
	for name, resp := range benchmarkResponses() {
		data := resp.Marshal()

		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				var decoded Response
				if err := decoded.Unmarshal(data); err != nil {
					b.Fatalf("Failed to unmarshal: %v", err)
				}
			}
		})
	}
}

// BenchmarkSize measures and reports the encoded size for each message shape
func BenchmarkSize(b *testing.B) {
	for name, req := range benchmarkRequests() {
		b.Run(name, func(b *testing.B) {
			data := req.Marshal()

			// Report the size as a custom metric
			b.ReportMetric(float64(len(data)), "bytes")

			// Minimal loop to satisfy benchmark requirements
			for i := 0; i < b.N; i++ {
				_ = data
			}
		})
	}
}

// BenchmarkCodecBaselines compares the protobuf wire codec against stdlib
// JSON and gob encodings of the same response. The wire format is fixed by
// the protocol; the baselines only keep its cost in perspective.
func BenchmarkCodecBaselines(b *testing.B) {
	resp := NewOKResponse("benchmark-key", make([]byte, 1024))

	protoData := resp.Marshal()
	jsonData, err := json.Marshal(resp)
	if err != nil {
		b.Fatalf("Failed to marshal JSON baseline: %v", err)
	}
	var gobBuf bytes.Buffer
	if err := gob.NewEncoder(&gobBuf).Encode(resp); err != nil {
		b.Fatalf("Failed to encode gob baseline: %v", err)
	}

	b.Run("Protobuf_Marshal", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_ = resp.Marshal()
		}
	})

	b.Run("JSON_Marshal", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			if _, err := json.Marshal(resp); err != nil {
				b.Fatalf("Failed to marshal: %v", err)
			}
		}
	})

	b.Run("Gob_Marshal", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			var buf bytes.Buffer
			if err := gob.NewEncoder(&buf).Encode(resp); err != nil {
				b.Fatalf("Failed to encode: %v", err)
			}
		}
	})

	b.Run("Protobuf_Unmarshal", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			var decoded Response
			if err := decoded.Unmarshal(protoData); err != nil {
				b.Fatalf("Failed to unmarshal: %v", err)
			}
		}
	})

	b.Run("JSON_Unmarshal", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			var decoded Response
			if err := json.Unmarshal(jsonData, &decoded); err != nil {
				b.Fatalf("Failed to unmarshal: %v", err)
			}
		}
	})

	b.Run("Gob_Unmarshal", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			var decoded Response
			if err := gob.NewDecoder(bytes.NewReader(gobBuf.Bytes())).Decode(&decoded); err != nil {
				b.Fatalf("Failed to decode: %v", err)
			}
		}
	})

	b.Run("EncodedSize", func(b *testing.B) {
		b.ReportMetric(float64(len(protoData)), "protobuf-bytes")
		b.ReportMetric(float64(len(jsonData)), "json-bytes")
		b.ReportMetric(float64(gobBuf.Len()), "gob-bytes")
		for i := 0; i < b.N; i++ {
			_ = protoData
		}
	})
}
