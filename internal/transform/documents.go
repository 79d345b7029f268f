package transform

import (
	"encoding/json"
	"fmt"

	"github.com/dmitrymomot/reindexer/internal/extract"
)

// ProducerDocument is the indexed shape of a producer. Both fields are
// always present.
type ProducerDocument struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// ProductDocument is the indexed shape of a product. Every field is always
// present; missing values are "" or 0.
type ProductDocument struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	URL     string `json:"url"`
	Img     string `json:"img"`
	Test    int64  `json:"test"`
	Score   int64  `json:"score"`
	Points  int64  `json:"points"`
	Keyword string `json:"keyword"`
}

// Producer maps a (title, url) row.
func Producer(rec extract.RawRecord) (ProducerDocument, error) {
	if len(rec) < 2 {
		return ProducerDocument{}, columnCount("producer", 2, len(rec))
	}
	return ProducerDocument{
		Title: Text(rec[0]),
		URL:   Text(rec[1]),
	}, nil
}

// Product maps an (id, name, url, img, tests, score, points, keyword) row.
// The id is required.
func Product(rec extract.RawRecord) (ProductDocument, error) {
	if len(rec) < 8 {
		return ProductDocument{}, columnCount("product", 8, len(rec))
	}

	id, err := RequiredInt(rec[0])
	if err != nil {
		return ProductDocument{}, fmt.Errorf("id: %w", err)
	}
	test, err := Int(rec[4])
	if err != nil {
		return ProductDocument{}, fmt.Errorf("test: %w", err)
	}
	score, err := Int(rec[5])
	if err != nil {
		return ProductDocument{}, fmt.Errorf("score: %w", err)
	}
	points, err := Int(rec[6])
	if err != nil {
		return ProductDocument{}, fmt.Errorf("points: %w", err)
	}

	return ProductDocument{
		ID:      id,
		Name:    Text(rec[1]),
		URL:     Text(rec[2]),
		Img:     Text(rec[3]),
		Test:    test,
		Score:   score,
		Points:  points,
		Keyword: Text(rec[7]),
	}, nil
}

// Func maps one raw record to a document.
type Func[D any] func(extract.RawRecord) (D, error)

// All maps records in order and stops at the first malformed record.
func All[D any](records []extract.RawRecord, fn Func[D]) ([]D, error) {
	docs := make([]D, 0, len(records))
	for i, rec := range records {
		doc, err := fn(rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func columnCount(entity string, want, got int) error {
	return fmt.Errorf("%w: %s row has %d columns, want %d", ErrMalformedRecord, entity, got, want)
}

// Encode serializes documents for the bulk body, preserving order.
func Encode[D any](docs []D) ([][]byte, error) {
	out := make([][]byte, 0, len(docs))
	for i, doc := range docs {
		b, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		out = append(out, b)
	}
	return out, nil
}
