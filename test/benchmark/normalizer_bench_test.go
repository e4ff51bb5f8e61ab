package benchmark

import (
	"strings"
	"testing"
)

var sampleTexts = map[string]string{
	"short": "Pertumbuhan ekonomi Indonesia mencapai lima persen",
	"medium": `<p>JAKARTA, KOMPAS.com - Pemerintah menetapkan kebijakan baru untuk mempercepat
        pembangunan infrastruktur di daerah. Menteri menyampaikan bahwa anggaran tahun ini
        difokuskan pada pendidikan dan kesehatan masyarakat.</p>
        Baca juga: Presiden Resmikan Bendungan Baru`,
	"long": strings.Repeat(`Pemindahan ibukota ke Nusantara terus berjalan. Para pejabat
        menegaskan bahwa pembangunannya akan diselesaikan secara bertahap, sementara investasi
        swasta diharapkan meningkat seiring kepastian hukum dan perbaikan tata kelola. `, 20),
}

func BenchmarkNormalize(b *testing.B) {
	n := newNormalizer(b)
	for name, text := range sampleTexts {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			for i := 0; i < b.N; i++ {
				_ = n.Normalize(text)
			}
		})
	}
}

func BenchmarkNormalizeParallel(b *testing.B) {
	n := newNormalizer(b)
	text := sampleTexts["medium"]
	b.ReportAllocs()
	b.SetBytes(int64(len(text)))
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = n.Normalize(text)
		}
	})
}
