package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	_ "github.com/glebarez/sqlite"

	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/pkg/postgres"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLTable reads articles from a table with the columns url, title, date,
// author, content and tags (semicolon separated). Any column may be NULL.
type SQLTable struct {
	db    *sql.DB
	table string
	owned bool
}

// NewSQLTable wraps an open database. The caller keeps ownership of db.
func NewSQLTable(db *sql.DB, table string) (*SQLTable, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("%w: table name %q", apperrors.ErrInvalidInput, table)
	}
	return &SQLTable{db: db, table: table}, nil
}

// OpenSQLite opens the SQLite database at path with the pure Go driver.
func OpenSQLite(path, table string) (*SQLTable, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, apperrors.CorpusIO("opening sqlite corpus", err)
	}
	t, err := NewSQLTable(db, table)
	if err != nil {
		db.Close()
		return nil, err
	}
	t.owned = true
	return t, nil
}

func (t *SQLTable) Articles(ctx context.Context) ([]Article, error) {
	query := fmt.Sprintf(
		`SELECT url, title, date, author, content, tags FROM %s ORDER BY url`, t.table)
	rows, err := t.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.CorpusIO("querying corpus table "+t.table, err)
	}
	defer rows.Close()

	var articles []Article
	for rows.Next() {
		var url, title, date, author, content, tags sql.NullString
		if err := rows.Scan(&url, &title, &date, &author, &content, &tags); err != nil {
			return nil, apperrors.CorpusIO("scanning corpus row", err)
		}
		articles = append(articles, Article{
			URL:     url.String,
			Title:   title.String,
			Date:    date.String,
			Author:  author.String,
			Content: content.String,
			Tags:    SplitTags(tags.String),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.CorpusIO("iterating corpus rows", err)
	}
	return articles, nil
}

func (t *SQLTable) Close() error {
	if t.owned {
		return t.db.Close()
	}
	return nil
}

type postgresTable struct {
	*SQLTable
	client *postgres.Client
}

func (p *postgresTable) Close() error {
	return p.client.Close()
}

// Open returns the Source selected by cfg.Driver.
func Open(cfg config.CorpusConfig, pg config.PostgresConfig) (Source, error) {
	switch cfg.Driver {
	case "json", "":
		return NewJSONFile(cfg.Path), nil
	case "sqlite":
		return OpenSQLite(cfg.Path, cfg.Table)
	case "postgres":
		client, err := postgres.New(pg)
		if err != nil {
			return nil, apperrors.CorpusIO("connecting to postgres corpus", err)
		}
		t, err := NewSQLTable(client.DB, cfg.Table)
		if err != nil {
			client.Close()
			return nil, err
		}
		return &postgresTable{SQLTable: t, client: client}, nil
	default:
		return nil, fmt.Errorf("%w: unknown corpus driver %q", apperrors.ErrInvalidInput, cfg.Driver)
	}
}
