package crypto

import "testing"

func BenchmarkModPow(b *testing.B) {
	b.ReportAllocs()
	for b.Loop() {
		_ = ModPow(123456789, 65537, 9_223_372_036_854_775_783)
	}
}

func BenchmarkModInverse(b *testing.B) {
	b.ReportAllocs()
	for b.Loop() {
		_ = ModInverse(65537, 1<<62)
	}
}

func BenchmarkModInverseNaive(b *testing.B) {
	b.ReportAllocs()
	for b.Loop() {
		_ = ModInverseNaive(17, 3120)
	}
}
