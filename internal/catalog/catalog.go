package catalog

import (
	"fmt"

	"github.com/dmitrymomot/reindexer/internal/extract"
	"github.com/dmitrymomot/reindexer/internal/index"
	"github.com/dmitrymomot/reindexer/internal/reindex"
	"github.com/dmitrymomot/reindexer/internal/transform"
)

// Logical index names.
const (
	Producers = "producers"
	Products  = "products"
)

// Names lists every entity in the order "all" runs them.
func Names() []string {
	return []string{Producers, Products}
}

var producerSchema = index.Schema{
	Fields: []index.Field{
		{Name: "title", Type: "text", Keyword: true},
		{Name: "url", Type: "text", Keyword: true},
	},
}

var productSchema = index.Schema{
	Shards:   4,
	Replicas: index.ReplicaCount(1),
	Dynamic:  "strict",
	Fields: []index.Field{
		{Name: "id", Type: "long"},
		{Name: "name", Type: "text", Fielddata: true},
		{Name: "url", Type: "text"},
		{Name: "img", Type: "text"},
		{Name: "test", Type: "long"},
		{Name: "score", Type: "long"},
		{Name: "points", Type: "long"},
		{Name: "keyword", Type: "text", Fielddata: true},
	},
}

// ProducerEntity describes the producers index for dialect.
func ProducerEntity(dialect extract.Dialect) (reindex.Entity[transform.ProducerDocument], error) {
	text, ok := producerQueries[dialect]
	if !ok {
		return reindex.Entity[transform.ProducerDocument]{}, fmt.Errorf("%w: %s", extract.ErrUnknownDialect, dialect)
	}
	return reindex.Entity[transform.ProducerDocument]{
		Name:      Producers,
		Query:     extract.Query{Name: Producers, Text: text},
		Schema:    producerSchema,
		Transform: transform.Producer,
	}, nil
}

// ProductEntity describes the products index for dialect.
func ProductEntity(dialect extract.Dialect) (reindex.Entity[transform.ProductDocument], error) {
	text, ok := productQueries[dialect]
	if !ok {
		return reindex.Entity[transform.ProductDocument]{}, fmt.Errorf("%w: %s", extract.ErrUnknownDialect, dialect)
	}
	return reindex.Entity[transform.ProductDocument]{
		Name:      Products,
		Query:     extract.Query{Name: Products, Text: text},
		Schema:    productSchema,
		Transform: transform.Product,
	}, nil
}

// Job builds the reindex job for the named entity.
func Job(name string, dialect extract.Dialect, cfg reindex.Config, deps reindex.Deps) (reindex.Job, error) {
	switch name {
	case Producers:
		e, err := ProducerEntity(dialect)
		if err != nil {
			return nil, err
		}
		return reindex.New(e, cfg, deps), nil
	case Products:
		e, err := ProductEntity(dialect)
		if err != nil {
			return nil, err
		}
		return reindex.New(e, cfg, deps), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEntity, name)
}
