package indexer

import (
	"bytes"
	"context"
	"fmt"
	"reflect"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/docstore"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/indexer/segment"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/normalizer"
)

func testNormalizer(t testing.TB) *normalizer.Normalizer {
	t.Helper()
	n, err := normalizer.New(normalizer.Options{
		Language:           "indonesian",
		ExtraStopwords:     []string{"baca", "juga", "halaman", "kompas"},
		BoilerplatePattern: `baca juga.*`,
		StripPatterns:      []string{`\.com`},
	})
	if err != nil {
		t.Fatalf("normalizer.New: %v", err)
	}
	return n
}

func sampleDocs() []docstore.Document {
	return []docstore.Document{
		{ID: "A", Content: "ekonomi indonesia tumbuh"},
		{ID: "B", Content: "politik dan ekonomi nasional"},
		{ID: "C", Content: "olahraga sepak bola"},
	}
}

func largerCorpus() []docstore.Document {
	words := []string{"ekonomi", "politik", "pemilu", "korupsi", "anggaran", "presiden", "olahraga", "bola"}
	docs := make([]docstore.Document, 0, 40)
	for i := 0; i < 40; i++ {
		var body bytes.Buffer
		for j := 0; j <= i%7; j++ {
			fmt.Fprintf(&body, "%s %s ", words[(i+j)%len(words)], words[(i*j)%len(words)])
		}
		docs = append(docs, docstore.Document{ID: fmt.Sprintf("doc-%02d", i), Title: "Berita", Content: body.String()})
	}
	return docs
}

func TestBuildSmallCorpus(t *testing.T) {
	snap, err := Build(context.Background(), sampleDocs(), testNormalizer(t), 2)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	idx := snap.Index
	if idx.DocumentCount() != 3 {
		t.Errorf("DocumentCount = %d, want 3", idx.DocumentCount())
	}
	if idx.AverageDocumentLength() != 3 {
		t.Errorf("avgdl = %v, want 3", idx.AverageDocumentLength())
	}
	if idx.DocFreq("ekonom") != 2 || idx.DocFreq("dan") != 0 {
		t.Errorf("df(ekonom)=%d df(dan)=%d", idx.DocFreq("ekonom"), idx.DocFreq("dan"))
	}
	d, err := snap.Store.Lookup("B")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !reflect.DeepEqual(d.Terms, []string{"politik", "ekonom", "nasional"}) {
		t.Errorf("terms = %v", d.Terms)
	}
}

func TestBuildIsWorkerCountIndependent(t *testing.T) {
	n := testNormalizer(t)
	var reference []byte
	for _, workers := range []int{1, 2, 3, 8, 64} {
		snap, err := Build(context.Background(), largerCorpus(), n, workers)
		if err != nil {
			t.Fatalf("Build(workers=%d): %v", workers, err)
		}
		data, err := segment.Encode(snap.Index, snap.Store, snap.Fingerprint)
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		if reference == nil {
			reference = data
			continue
		}
		if !bytes.Equal(reference, data) {
			t.Errorf("workers=%d produced a different segment", workers)
		}
	}
}

func TestBuildEmptyCorpus(t *testing.T) {
	snap, err := Build(context.Background(), nil, testNormalizer(t), 4)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if snap.Index.DocumentCount() != 0 || snap.Index.AverageDocumentLength() != 0 {
		t.Errorf("stats = %+v", snap.Index.Stats())
	}
}

func TestBuildKeepsFirstDuplicateAndEmptyDocuments(t *testing.T) {
	docs := append(sampleDocs(),
		docstore.Document{ID: "A", Content: "berita lain sama sekali"},
		docstore.Document{ID: "D", Content: "2024 !!!"},
	)
	snap, err := Build(context.Background(), docs, testNormalizer(t), 3)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if snap.Index.DocumentCount() != 4 {
		t.Errorf("DocumentCount = %d, want 4", snap.Index.DocumentCount())
	}
	if snap.Index.DocLength("A") != 3 {
		t.Errorf("DocLength(A) = %d, want 3", snap.Index.DocLength("A"))
	}
	if snap.Index.DocLength("D") != 0 {
		t.Errorf("DocLength(D) = %d, want 0", snap.Index.DocLength("D"))
	}
}

func TestBuildHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Build(ctx, sampleDocs(), testNormalizer(t), 2); err == nil {
		t.Error("expected error from cancelled context")
	}
}
