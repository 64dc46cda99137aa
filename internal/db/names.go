package db

import (
	"time"
)

// LoadNameIndex reads the persisted name index. Corrupt or missing data is
// an empty index, never an error; resolution will simply re-fetch.
func (d *DB) LoadNameIndex() (map[string]int32, time.Time) {
	index := make(map[string]int32)

	rows, err := d.sql.Query("SELECT name, type_id FROM name_index")
	if err != nil {
		return index, time.Time{}
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var typeID int32
		if err := rows.Scan(&name, &typeID); err != nil {
			continue
		}
		index[name] = typeID
	}

	var savedAt time.Time
	var raw string
	if err := d.sql.QueryRow("SELECT saved_at FROM name_index_meta WHERE id = 1").Scan(&raw); err == nil {
		savedAt, _ = time.Parse(time.RFC3339, raw)
	}
	return index, savedAt
}

// SaveNameIndex upserts resolved entries and stamps the save time. The index
// only grows; identifiers never change meaning, so nothing is ever deleted.
func (d *DB) SaveNameIndex(index map[string]int32) error {
	tx, err := d.sql.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT OR REPLACE INTO name_index (name, type_id) VALUES (?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for name, typeID := range index {
		if _, err := stmt.Exec(name, typeID); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(
		"INSERT OR REPLACE INTO name_index_meta (id, saved_at) VALUES (1, ?)",
		time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return err
	}

	return tx.Commit()
}
