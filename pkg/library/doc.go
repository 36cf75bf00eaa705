// Package library keeps a catalogue of named, compiled fictionaries in a
// SQLite database.
//
// Each fictionary is stored as the binary encoding produced by
// charkov.Encode together with a few columns of metadata, so listing the
// catalogue never has to decode a chain. Loading decodes and validates the
// stored bytes; a damaged row is reported instead of being handed to the
// generator.
//
// The package only needs a *sql.DB. Which SQLite driver backs it is up to
// the caller; the fictionary command links the pure-Go modernc.org/sqlite
// driver by default and github.com/mattn/go-sqlite3 under the cgo_sqlite
// build tag.
//
// # Basic Usage
//
//	db, err := sql.Open("sqlite", "fictionary.db")
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := library.SetupSchema(db); err != nil {
//		log.Fatal(err)
//	}
//	lib, err := library.NewLibrary(db)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer lib.Close()
//
//	if err := lib.Save(ctx, "english", chain); err != nil {
//		log.Fatal(err)
//	}
//	chain, err = lib.Load(ctx, "english")
package library
