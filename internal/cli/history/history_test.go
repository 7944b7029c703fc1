package history

import (
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/limitless/internal/archive"
	"github.com/julianstephens/limitless/internal/cli"
	"github.com/julianstephens/limitless/internal/clock"
	"github.com/julianstephens/limitless/internal/config"
	"github.com/julianstephens/limitless/internal/documents"
	"github.com/julianstephens/limitless/internal/storage"
)

func newTestContext(t *testing.T) (*cli.Context, *storage.MemoryStore) {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	store := storage.NewMemoryStore()
	return &cli.Context{
		Config: cfg,
		Store:  store,
		Clock:  clock.NewFixed(time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)),
	}, store
}

func TestRenderSnapshots(t *testing.T) {
	out := renderSnapshots([]archive.SnapshotInfo{
		{Date: "2026-10-12", Documents: []string{"votes", "sleep-data"}, Size: 2048},
	}, "2026-10-15")
	for _, want := range []string{"DATE", "2026-10-12", "3 days ago", "2.0 kB"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestArchiveCommand(t *testing.T) {
	ctx, store := newTestContext(t)
	_ = store.WriteDocument(documents.Votes, []byte(`{"date":"2026-10-14","votes":[]}`))

	if err := (&ArchiveCmd{}).Run(ctx); err != nil {
		t.Fatalf("ArchiveCmd.Run() error: %v", err)
	}
	if ok, _ := store.HasSnapshot("2026-10-14"); !ok {
		t.Error("stale day was not archived")
	}

	if err := (&ArchiveCmd{Date: "2026-10-01"}).Run(ctx); err != nil {
		t.Fatalf("ArchiveCmd.Run(--date) error: %v", err)
	}
	if ok, _ := store.HasSnapshot("2026-10-01"); !ok {
		t.Error("explicit date was not archived")
	}
	if err := (&ArchiveCmd{Date: "yesterday"}).Run(ctx); err == nil {
		t.Error("expected invalid date error")
	}
}

func TestPruneCommand(t *testing.T) {
	ctx, store := newTestContext(t)
	for _, date := range []string{"2026-06-01", "2026-10-01", "2026-10-14"} {
		_ = store.CreateSnapshot(date, map[string][]byte{})
	}

	if err := (&PruneCmd{}).Run(ctx); err != nil {
		t.Fatalf("PruneCmd.Run() error: %v", err)
	}
	dates, _ := store.ListSnapshots()
	if len(dates) != 2 {
		t.Fatalf("after default prune dates = %v", dates)
	}

	if err := (&PruneCmd{Days: 7}).Run(ctx); err != nil {
		t.Fatalf("PruneCmd.Run(--days) error: %v", err)
	}
	dates, _ = store.ListSnapshots()
	if len(dates) != 1 || dates[0] != "2026-10-14" {
		t.Errorf("after --days 7 dates = %v", dates)
	}
}

func TestShowAndRestore(t *testing.T) {
	ctx, store := newTestContext(t)
	_ = store.CreateSnapshot("2026-10-10", map[string][]byte{
		documents.SleepData: []byte(`{"date":"2026-10-10","hoursSlept":8}`),
	})

	if err := (&ShowCmd{Date: "2026-10-10"}).Run(ctx); err != nil {
		t.Errorf("ShowCmd.Run() error: %v", err)
	}
	if err := (&ShowCmd{Date: "2026-10-10", File: "sleep-data.json"}).Run(ctx); err != nil {
		t.Errorf("ShowCmd.Run(file) error: %v", err)
	}
	if err := (&ShowCmd{Date: "2026-10-09"}).Run(ctx); err == nil {
		t.Error("expected missing snapshot error")
	}
	if err := (&ListCmd{}).Run(ctx); err != nil {
		t.Errorf("ListCmd.Run() error: %v", err)
	}

	if err := (&RestoreCmd{Date: "2026-10-10", Yes: true}).Run(ctx); err != nil {
		t.Fatalf("RestoreCmd.Run() error: %v", err)
	}
	data, err := store.ReadDocument(documents.SleepData)
	if err != nil {
		t.Fatalf("restored document missing: %v", err)
	}
	doc, _ := documents.Decode(data)
	if doc.Date() != "2026-10-15" || doc.Int("hoursSlept") != 8 {
		t.Errorf("restored document = %v", doc)
	}

	if err := (&RestoreCmd{Date: "2026-10-11", Yes: true}).Run(ctx); err == nil {
		t.Error("expected missing snapshot error")
	}
}
