// Package retrieval provides the vector store the validators and the
// recommendation agent ground responses against. Course documents live in
// Postgres with pgvector embeddings.
package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/tuanpa2295/filip-hackathon/internal/validation"
)

// Querier abstracts the pgx pool methods the store needs. pgxmock's pool
// satisfies it in tests.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Store searches course documents by embedding similarity.
type Store struct {
	pool     Querier
	embedder validation.Embedder
	table    string
}

// NewStore creates a vector store over the given table. The table needs
// content text, metadata jsonb, and embedding vector columns.
func NewStore(pool Querier, embedder validation.Embedder, table string) *Store {
	if table == "" {
		table = "course_documents"
	}
	return &Store{pool: pool, embedder: embedder, table: table}
}

// Connect opens a pgx pool against databaseURL and returns a store on it.
func Connect(ctx context.Context, databaseURL string, embedder validation.Embedder, table string) (*Store, func(), error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, nil, eris.Wrap(err, "retrieval: parse database url")
	}
	cfg.MaxConns = 8

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, nil, eris.Wrap(err, "retrieval: connect")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, eris.Wrap(err, "retrieval: ping")
	}

	return NewStore(pool, embedder, table), pool.Close, nil
}

// Search embeds the query and returns the k nearest documents by cosine
// distance, most similar first.
func (s *Store) Search(ctx context.Context, query string, k int) ([]validation.Document, error) {
	if k <= 0 {
		k = 5
	}

	start := time.Now()
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, eris.Wrap(err, "retrieval: embed query")
	}

	sql := fmt.Sprintf(`SELECT content, metadata, 1 - (embedding <=> $1::vector) AS score
FROM %s
ORDER BY embedding <=> $1::vector
LIMIT $2`, s.table)

	rows, err := s.pool.Query(ctx, sql, vectorLiteral(vec), k)
	if err != nil {
		return nil, eris.Wrap(err, "retrieval: similarity query")
	}
	defer rows.Close()

	var docs []validation.Document
	for rows.Next() {
		var (
			content string
			rawMeta []byte
			score   float64
		)
		if err := rows.Scan(&content, &rawMeta, &score); err != nil {
			return nil, eris.Wrap(err, "retrieval: scan row")
		}

		doc := validation.Document{Content: content, Score: score}
		if len(rawMeta) > 0 {
			if err := json.Unmarshal(rawMeta, &doc.Metadata); err != nil {
				zap.L().Warn("retrieval: skipping malformed metadata", zap.Error(err))
			}
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "retrieval: iterate rows")
	}

	zap.L().Debug("vector search complete",
		zap.Int("requested", k),
		zap.Int("returned", len(docs)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return docs, nil
}

// vectorLiteral renders a pgvector input literal like [0.1,0.2,0.3].
func vectorLiteral(vec []float64) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range vec {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
	}
	sb.WriteByte(']')
	return sb.String()
}
