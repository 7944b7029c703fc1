package archive

import (
	stderrors "errors"
	"reflect"
	"testing"

	"github.com/julianstephens/limitless/internal/documents"
	"github.com/julianstephens/limitless/internal/errors"
	"github.com/julianstephens/limitless/internal/storage"
)

func newTestManager(t *testing.T) (*Manager, storage.Provider) {
	t.Helper()
	p := storage.NewFileStore(t.TempDir())
	if err := p.Init(); err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	return NewManager(p, documents.DailyNames(), 90), p
}

func TestArchiveCopiesExistingDocuments(t *testing.T) {
	m, p := newTestManager(t)
	_ = p.WriteDocument("votes", []byte(`{"date":"2026-10-14","votes":[]}`))
	_ = p.WriteDocument("sleep-data", []byte(`{"date":"2026-10-14"}`))
	_ = p.WriteDocument("badge-progress", []byte(`{"badges":{}}`))

	if err := m.Archive("2026-10-14", "2026-10-15"); err != nil {
		t.Fatalf("Archive() error: %v", err)
	}

	snap, err := p.ReadSnapshot("2026-10-14")
	if err != nil {
		t.Fatalf("ReadSnapshot() error: %v", err)
	}
	if len(snap) != 2 {
		t.Errorf("snapshot has %d documents, want 2 (missing ones omitted, persistent excluded)", len(snap))
	}
	if string(snap["votes"]) != `{"date":"2026-10-14","votes":[]}` {
		t.Errorf("snapshot copy is not verbatim: %s", snap["votes"])
	}
}

func TestArchiveIsIdempotent(t *testing.T) {
	m, p := newTestManager(t)
	_ = p.WriteDocument("votes", []byte(`{"v":1}`))
	if err := m.Archive("2026-10-14", "2026-10-15"); err != nil {
		t.Fatalf("Archive() error: %v", err)
	}

	_ = p.WriteDocument("votes", []byte(`{"v":2}`))
	_ = p.WriteDocument("sleep-data", []byte(`{}`))
	if err := m.Archive("2026-10-14", "2026-10-15"); err != nil {
		t.Fatalf("second Archive() error: %v", err)
	}

	snap, _ := p.ReadSnapshot("2026-10-14")
	if len(snap) != 1 || string(snap["votes"]) != `{"v":1}` {
		t.Errorf("snapshot changed on second archive: %v", snap)
	}
}

func TestPruneBoundary(t *testing.T) {
	m, p := newTestManager(t)
	today := "2026-10-15"
	dates := map[string]bool{
		"2026-07-16": false, // today - 91
		"2026-07-17": true,  // today - 90
		"2026-07-18": true,  // today - 89
		"2026-10-14": true,
	}
	for date := range dates {
		if err := p.CreateSnapshot(date, map[string][]byte{}); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := m.Prune(today)
	if err != nil {
		t.Fatalf("Prune() error: %v", err)
	}
	if !reflect.DeepEqual(removed, []string{"2026-07-16"}) {
		t.Errorf("Prune() removed %v, want [2026-07-16]", removed)
	}
	for date, kept := range dates {
		ok, _ := p.HasSnapshot(date)
		if ok != kept {
			t.Errorf("snapshot %s present = %v, want %v", date, ok, kept)
		}
	}
}

func TestArchivePrunesAfterSnapshot(t *testing.T) {
	m, p := newTestManager(t)
	_ = p.CreateSnapshot("2026-01-01", map[string][]byte{})
	if err := m.Archive("2026-10-14", "2026-10-15"); err != nil {
		t.Fatalf("Archive() error: %v", err)
	}
	if ok, _ := p.HasSnapshot("2026-01-01"); ok {
		t.Error("expired snapshot survived archive")
	}
}

func TestDatesNewestFirst(t *testing.T) {
	m, p := newTestManager(t)
	for _, d := range []string{"2026-10-13", "2026-10-14", "2026-09-01"} {
		_ = p.CreateSnapshot(d, map[string][]byte{"votes": []byte(`{}`)})
	}

	dates, err := m.Dates()
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"2026-10-14", "2026-10-13", "2026-09-01"}; !reflect.DeepEqual(dates, want) {
		t.Errorf("Dates() = %v, want %v", dates, want)
	}

	infos, err := m.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 3 || infos[0].Size != 2 || !reflect.DeepEqual(infos[0].Documents, []string{"votes"}) {
		t.Errorf("List() = %+v", infos)
	}
}

func TestFileErrors(t *testing.T) {
	m, p := newTestManager(t)
	_ = p.CreateSnapshot("2026-10-14", map[string][]byte{"votes": []byte(`{"date":"2026-10-14"}`)})

	tests := []struct {
		name string
		date string
		file string
		want error
	}{
		{"malformed date", "2026-13-40", "votes", errors.ErrInvalidRequest},
		{"unknown document", "2026-10-14", "passwords", errors.ErrInvalidRequest},
		{"missing snapshot", "2026-10-01", "votes", errors.ErrNotFound},
		{"missing file", "2026-10-14", "sleep-data", errors.ErrNotFound},
		{"found", "2026-10-14", "votes", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := m.File(tt.date, tt.file)
			if tt.want == nil {
				if err != nil || doc.Date() != "2026-10-14" {
					t.Fatalf("File() = %v, %v", doc, err)
				}
				return
			}
			if !stderrors.Is(err, tt.want) {
				t.Errorf("File() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRestoreArchivesStaleDaysFirst(t *testing.T) {
	m, p := newTestManager(t)
	_ = p.CreateSnapshot("2026-10-10", map[string][]byte{"votes": []byte(`{"date":"2026-10-10","votes":[1]}`)})
	_ = p.WriteDocument("votes", []byte(`{"date":"2026-10-14","votes":[2]}`))

	restored, err := m.Restore("2026-10-10", "2026-10-15")
	if err != nil {
		t.Fatalf("Restore() error: %v", err)
	}
	if !reflect.DeepEqual(restored, []string{"votes"}) {
		t.Errorf("Restore() = %v, want [votes]", restored)
	}

	snap, err := p.ReadSnapshot("2026-10-14")
	if err != nil {
		t.Fatalf("stale day was not archived before restore: %v", err)
	}
	if string(snap["votes"]) != `{"date":"2026-10-14","votes":[2]}` {
		t.Errorf("archived stale votes = %s", snap["votes"])
	}

	data, _ := p.ReadDocument("votes")
	doc, err := documents.Decode(data)
	if err != nil {
		t.Fatalf("restored votes are not a document: %v", err)
	}
	if doc.Date() != "2026-10-15" {
		t.Errorf("restored date = %q, want today", doc.Date())
	}
	if !reflect.DeepEqual(doc.List("votes"), []any{float64(1)}) {
		t.Errorf("restored votes = %v, want snapshot contents", doc.List("votes"))
	}
}
