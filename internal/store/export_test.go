package store

import "database/sql"

// BumpSchemaVersion simulates a database written by a newer build.
func BumpSchemaVersion(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.Exec(`UPDATE schema_version SET version = version + 1`)
	return err
}
