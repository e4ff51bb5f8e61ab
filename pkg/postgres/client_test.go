package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/glebarez/sqlite"
)

func openMemory(t *testing.T) *Client {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	c := FromDB(db)
	t.Cleanup(func() { c.Close() })
	if _, err := c.DB.Exec(`CREATE TABLE snapshots (id INTEGER PRIMARY KEY, data TEXT)`); err != nil {
		t.Fatal(err)
	}
	return c
}

func count(t *testing.T, c *Client) int {
	t.Helper()
	var n int
	if err := c.DB.QueryRow(`SELECT COUNT(*) FROM snapshots`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	return n
}

func TestInTxCommits(t *testing.T) {
	c := openMemory(t)
	err := c.InTx(context.Background(), func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO snapshots (data) VALUES ('a'), ('b')`)
		return err
	})
	if err != nil {
		t.Fatalf("InTx: %v", err)
	}
	if n := count(t, c); n != 2 {
		t.Errorf("rows = %d, want 2", n)
	}
}

func TestInTxRollsBack(t *testing.T) {
	c := openMemory(t)
	boom := errors.New("boom")
	err := c.InTx(context.Background(), func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO snapshots (data) VALUES ('a')`); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("InTx = %v, want boom", err)
	}
	if n := count(t, c); n != 0 {
		t.Errorf("rows = %d after rollback, want 0", n)
	}
}

func TestPing(t *testing.T) {
	c := openMemory(t)
	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}
