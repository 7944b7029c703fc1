// Package storagetest holds the behaviour every storage.Provider must share.
package storagetest

import (
	"errors"
	"reflect"
	"testing"

	"github.com/julianstephens/limitless/internal/storage"
)

// Run exercises newProvider against the Provider contract. newProvider must
// return an initialized, empty provider.
func Run(t *testing.T, newProvider func(t *testing.T) storage.Provider) {
	t.Helper()

	t.Run("documents", func(t *testing.T) {
		p := newProvider(t)

		if _, err := p.ReadDocument("votes"); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("ReadDocument(missing) error = %v, want ErrNotFound", err)
		}
		if err := p.WriteDocument("votes", []byte(`{"date":"2026-10-15"}`)); err != nil {
			t.Fatalf("WriteDocument() error: %v", err)
		}
		if err := p.WriteDocument("votes", []byte(`{"date":"2026-10-16"}`)); err != nil {
			t.Fatalf("WriteDocument() overwrite error: %v", err)
		}
		if err := p.WriteDocument("morning-state", []byte(`{}`)); err != nil {
			t.Fatalf("WriteDocument() error: %v", err)
		}

		data, err := p.ReadDocument("votes")
		if err != nil {
			t.Fatalf("ReadDocument() error: %v", err)
		}
		if string(data) != `{"date":"2026-10-16"}` {
			t.Errorf("ReadDocument() = %s, want overwritten body", data)
		}

		names, err := p.ListDocuments()
		if err != nil {
			t.Fatalf("ListDocuments() error: %v", err)
		}
		if want := []string{"morning-state", "votes"}; !reflect.DeepEqual(names, want) {
			t.Errorf("ListDocuments() = %v, want %v", names, want)
		}
	})

	t.Run("invalid names", func(t *testing.T) {
		p := newProvider(t)
		for _, name := range []string{"", "../etc", "history", "Votes", "a/b"} {
			if err := p.WriteDocument(name, []byte(`{}`)); !errors.Is(err, storage.ErrInvalidName) {
				t.Errorf("WriteDocument(%q) error = %v, want ErrInvalidName", name, err)
			}
		}
	})

	t.Run("snapshots are write-once", func(t *testing.T) {
		p := newProvider(t)

		first := map[string][]byte{"votes": []byte(`{"v":1}`), "sleep-data": []byte(`{"s":1}`)}
		if err := p.CreateSnapshot("2026-10-14", first); err != nil {
			t.Fatalf("CreateSnapshot() error: %v", err)
		}
		second := map[string][]byte{"votes": []byte(`{"v":2}`)}
		if err := p.CreateSnapshot("2026-10-14", second); !errors.Is(err, storage.ErrSnapshotExists) {
			t.Fatalf("second CreateSnapshot() error = %v, want ErrSnapshotExists", err)
		}

		got, err := p.ReadSnapshot("2026-10-14")
		if err != nil {
			t.Fatalf("ReadSnapshot() error: %v", err)
		}
		if len(got) != 2 || string(got["votes"]) != `{"v":1}` {
			t.Errorf("ReadSnapshot() = %v, want the first snapshot untouched", got)
		}

		ok, err := p.HasSnapshot("2026-10-14")
		if err != nil || !ok {
			t.Errorf("HasSnapshot() = %v, %v; want true", ok, err)
		}
		if _, err := p.ReadSnapshot("2026-10-13"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("ReadSnapshot(missing) error = %v, want ErrNotFound", err)
		}
		if _, err := p.HasSnapshot("14-10-2026"); !errors.Is(err, storage.ErrInvalidName) {
			t.Errorf("HasSnapshot(bad date) error = %v, want ErrInvalidName", err)
		}
	})

	t.Run("snapshot listing and deletion", func(t *testing.T) {
		p := newProvider(t)
		for _, date := range []string{"2026-10-14", "2026-07-01", "2026-09-30"} {
			if err := p.CreateSnapshot(date, map[string][]byte{}); err != nil {
				t.Fatalf("CreateSnapshot(%s) error: %v", date, err)
			}
		}

		dates, err := p.ListSnapshots()
		if err != nil {
			t.Fatalf("ListSnapshots() error: %v", err)
		}
		if want := []string{"2026-07-01", "2026-09-30", "2026-10-14"}; !reflect.DeepEqual(dates, want) {
			t.Errorf("ListSnapshots() = %v, want %v", dates, want)
		}

		if err := p.DeleteSnapshot("2026-07-01"); err != nil {
			t.Fatalf("DeleteSnapshot() error: %v", err)
		}
		if ok, _ := p.HasSnapshot("2026-07-01"); ok {
			t.Error("snapshot still present after DeleteSnapshot()")
		}
		if err := p.DeleteSnapshot("2026-07-01"); err != nil {
			t.Errorf("DeleteSnapshot() of missing date error: %v", err)
		}
	})

	t.Run("logs", func(t *testing.T) {
		p := newProvider(t)

		records, err := p.ReadLog("events")
		if err != nil {
			t.Fatalf("ReadLog(empty) error: %v", err)
		}
		if len(records) != 0 {
			t.Fatalf("ReadLog(empty) = %d records, want 0", len(records))
		}

		if err := p.AppendLog("events", [][]byte{[]byte(`{"n":1}`), []byte(`{"n":2}`)}); err != nil {
			t.Fatalf("AppendLog() error: %v", err)
		}
		if err := p.AppendLog("events", [][]byte{[]byte(`{"n":3}`)}); err != nil {
			t.Fatalf("AppendLog() error: %v", err)
		}
		if err := p.AppendLog("boss-encounters", [][]byte{[]byte(`{"b":1}`)}); err != nil {
			t.Fatalf("AppendLog() error: %v", err)
		}

		records, err = p.ReadLog("events")
		if err != nil {
			t.Fatalf("ReadLog() error: %v", err)
		}
		var got []string
		for _, r := range records {
			got = append(got, string(r))
		}
		if want := []string{`{"n":1}`, `{"n":2}`, `{"n":3}`}; !reflect.DeepEqual(got, want) {
			t.Errorf("ReadLog() = %v, want %v", got, want)
		}
	})
}
