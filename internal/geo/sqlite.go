// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS series (
	gse TEXT PRIMARY KEY,
	date TEXT,
	organisms TEXT,
	platforms TEXT,
	platform_titles TEXT
);
CREATE TABLE IF NOT EXISTS datasets (
	gds TEXT PRIMARY KEY,
	date TEXT,
	organism TEXT,
	platform TEXT,
	samples TEXT,
	genes TEXT
);
CREATE TABLE IF NOT EXISTS platforms (
	gpl TEXT PRIMARY KEY,
	date TEXT,
	organism TEXT,
	title TEXT
);
CREATE TABLE IF NOT EXISTS members (
	container TEXT NOT NULL,
	gsm TEXT NOT NULL,
	PRIMARY KEY (container, gsm)
);
CREATE TABLE IF NOT EXISTS dataset_series (
	gds TEXT NOT NULL,
	gse TEXT NOT NULL,
	PRIMARY KEY (gds, gse)
);
CREATE TABLE IF NOT EXISTS overlaps (
	id1 TEXT NOT NULL,
	id2 TEXT NOT NULL,
	shared INTEGER NOT NULL,
	len1 INTEGER NOT NULL,
	len2 INTEGER NOT NULL,
	PRIMARY KEY (id1, id2)
);
CREATE INDEX IF NOT EXISTS idx_members_gsm ON members(gsm);
`

// DB is an SQLite store of GEO accession tables.
type DB struct {
	db *sql.DB
}

// OpenDB opens or creates the SQLite database at path.
func OpenDB(ctx context.Context, path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	_, err = db.ExecContext(ctx, schema)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &DB{db: db}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Store replaces the rows for the given tables and overlaps in the
// database in a single transaction. Any argument may be nil.
func (d *DB) Store(ctx context.Context, datasets []*Dataset, series []*Series, platforms []*Platform, overlaps []*Overlap) (err error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	exec := func(query string, args ...interface{}) {
		if err != nil {
			return
		}
		_, err = tx.ExecContext(ctx, query, args...)
		if err != nil {
			err = fmt.Errorf("%s: %w", strings.Fields(query)[0], err)
		}
	}
	for _, s := range series {
		gse := upper(s.GSE)
		exec(`INSERT OR REPLACE INTO series (gse, date, organisms, platforms, platform_titles) VALUES (?, ?, ?, ?, ?)`,
			gse, s.Date, strings.Join(s.Organisms, ","), strings.Join(upperList(s.Platforms), ","), strings.Join(s.PlatformTitles, ","))
		for _, gsm := range upperList(s.Samples) {
			exec(`INSERT OR IGNORE INTO members (container, gsm) VALUES (?, ?)`, gse, gsm)
		}
	}
	for _, ds := range datasets {
		gds := upper(ds.GDS)
		exec(`INSERT OR REPLACE INTO datasets (gds, date, organism, platform, samples, genes) VALUES (?, ?, ?, ?, ?, ?)`,
			gds, ds.Date, ds.Organism, upper(ds.Platform), ds.NSamples, ds.NGenes)
		for _, gsm := range upperList(ds.Samples) {
			exec(`INSERT OR IGNORE INTO members (container, gsm) VALUES (?, ?)`, gds, gsm)
		}
		for _, gse := range upperList(ds.Series) {
			exec(`INSERT OR IGNORE INTO dataset_series (gds, gse) VALUES (?, ?)`, gds, gse)
		}
	}
	for _, p := range platforms {
		exec(`INSERT OR REPLACE INTO platforms (gpl, date, organism, title) VALUES (?, ?, ?, ?)`,
			upper(p.GPL), p.Date, p.Organism, p.Title)
	}
	for _, o := range overlaps {
		exec(`INSERT OR REPLACE INTO overlaps (id1, id2, shared, len1, len2) VALUES (?, ?, ?, ?, ?)`,
			o.ID1, o.ID2, o.Shared, o.Len1, o.Len2)
	}
	if err != nil {
		return err
	}
	return tx.Commit()
}

// Containers returns the series and datasets holding the sample gsm.
func (d *DB) Containers(ctx context.Context, gsm string) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT container FROM members WHERE gsm = ? ORDER BY container`, upper(gsm))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
