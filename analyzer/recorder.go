// Package analyzer captures per-cycle signal traces from a running design and
// persists them, taking the place of an on-chip logic analyzer.
package analyzer

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"reflect"
	"strings"

	// Recorded traces are stored through SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// A Recorder is a backend that can store trace entries.
type Recorder interface {
	// CreateTable creates a table shaped after the fields of sampleEntry.
	CreateTable(tableName string, sampleEntry any)

	// InsertData buffers one entry for a table that already exists.
	InsertData(tableName string, entry any)

	// ListTables returns the names of all created tables.
	ListTables() []string

	// Flush writes all buffered entries to the database.
	Flush()
}

// NewRecorder creates a SQLite-backed Recorder. With an empty path a unique
// file name is generated. Buffered entries are flushed at process exit.
func NewRecorder(path string) Recorder {
	w := &sqliteWriter{
		dbName:    path,
		batchSize: 100000,
		tables:    make(map[string]*table),
	}

	w.init()

	atexit.Register(func() { w.Flush() })

	return w
}

type table struct {
	structType reflect.Type
	entries    []any
}

type sqliteWriter struct {
	*sql.DB

	dbName    string
	batchSize int
	tables    map[string]*table
}

func (w *sqliteWriter) init() {
	if w.dbName == "" {
		w.dbName = "slowdram_trace_" + xid.New().String()
	}

	filename := w.dbName + ".sqlite3"

	if _, err := os.Stat(filename); err == nil {
		panic(fmt.Errorf("file %s already exists", filename))
	}

	fmt.Fprintf(os.Stderr, "Trace database created: %s\n", filename)

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		panic(err)
	}

	w.DB = db
}

func allowedKind(kind reflect.Kind) bool {
	switch kind {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16,
		reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16,
		reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.String:
		return true
	}

	return false
}

func sqlType(kind reflect.Kind) string {
	switch kind {
	case reflect.String:
		return "TEXT"
	case reflect.Float32, reflect.Float64:
		return "REAL"
	default:
		return "INTEGER"
	}
}

// CreateTable creates a table whose columns mirror the exported fields of
// sampleEntry, which must be a flat struct of scalar fields.
func (w *sqliteWriter) CreateTable(tableName string, sampleEntry any) {
	t := reflect.TypeOf(sampleEntry)
	if t.Kind() != reflect.Struct {
		log.Panicf("table %s: sample entry must be a struct", tableName)
	}

	cols := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !allowedKind(f.Type.Kind()) {
			log.Panicf("table %s: field %s has unsupported kind %s",
				tableName, f.Name, f.Type.Kind())
		}

		cols = append(cols, f.Name+" "+sqlType(f.Type.Kind()))
	}

	stmt := fmt.Sprintf(
		"CREATE TABLE %s (%s);", tableName, strings.Join(cols, ", "))
	if _, err := w.Exec(stmt); err != nil {
		panic(err)
	}

	w.tables[tableName] = &table{structType: t}
}

// InsertData buffers one entry, flushing when the batch is full.
func (w *sqliteWriter) InsertData(tableName string, entry any) {
	t, found := w.tables[tableName]
	if !found {
		log.Panicf("table %s does not exist", tableName)
	}

	if reflect.TypeOf(entry) != t.structType {
		log.Panicf("table %s: entry type mismatch", tableName)
	}

	t.entries = append(t.entries, entry)
	if len(t.entries) >= w.batchSize {
		w.Flush()
	}
}

// ListTables returns the names of all created tables.
func (w *sqliteWriter) ListTables() []string {
	names := make([]string, 0, len(w.tables))
	for name := range w.tables {
		names = append(names, name)
	}
	return names
}

// Flush writes all buffered entries in one transaction per table.
func (w *sqliteWriter) Flush() {
	for name, t := range w.tables {
		if len(t.entries) == 0 {
			continue
		}

		w.flushTable(name, t)
		t.entries = nil
	}
}

func (w *sqliteWriter) flushTable(name string, t *table) {
	placeholders := strings.TrimSuffix(
		strings.Repeat("?, ", t.structType.NumField()), ", ")
	stmt := fmt.Sprintf("INSERT INTO %s VALUES (%s);", name, placeholders)

	tx, err := w.Begin()
	if err != nil {
		panic(err)
	}

	prepared, err := tx.Prepare(stmt)
	if err != nil {
		panic(err)
	}

	for _, entry := range t.entries {
		v := reflect.ValueOf(entry)
		args := make([]any, v.NumField())
		for i := range args {
			args[i] = v.Field(i).Interface()
		}

		if _, err := prepared.Exec(args...); err != nil {
			panic(err)
		}
	}

	if err := tx.Commit(); err != nil {
		panic(err)
	}
}
