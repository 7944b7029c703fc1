package history

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/julianstephens/limitless/internal/archive"
	"github.com/julianstephens/limitless/internal/cli"
	"github.com/julianstephens/limitless/internal/utils"
)

type ListCmd struct{}

func (cmd *ListCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	infos, err := a.Archive.List()
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}
	if len(infos) == 0 {
		fmt.Println("No archived days yet.")
		return nil
	}

	fmt.Println(cli.HeaderStyle.Render(fmt.Sprintf("Archived days (%d total, keeping %d days)", len(infos), a.Archive.RetentionDays())))
	fmt.Println(renderSnapshots(infos, a.Today()))
	return nil
}

func renderSnapshots(infos []archive.SnapshotInfo, today string) string {
	now, _ := utils.ParseDate(today)
	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		age := ""
		if t, err := utils.ParseDate(info.Date); err == nil {
			age = humanize.RelTime(t, now, "ago", "from now")
		}
		rows = append(rows, []string{
			info.Date,
			age,
			fmt.Sprintf("%d", len(info.Documents)),
			humanize.Bytes(uint64(info.Size)),
		})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(cli.MutedStyle).
		Headers("DATE", "AGE", "DOCUMENTS", "SIZE").
		Rows(rows...)
	return t.Render()
}

type ShowCmd struct {
	Date string `arg:"" help:"Archived date (YYYY-MM-DD)."`
	File string `arg:"" optional:"" help:"Single document to show."`
}

func (cmd *ShowCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}

	var out any
	if cmd.File != "" {
		out, err = a.Archive.File(cmd.Date, strings.TrimSuffix(cmd.File, ".json"))
	} else {
		out, err = a.Archive.Snapshot(cmd.Date)
	}
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

type RestoreCmd struct {
	Date string `arg:"" help:"Archived date (YYYY-MM-DD) to restore."`
	Yes  bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (cmd *RestoreCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	if _, err := a.Archive.Snapshot(cmd.Date); err != nil {
		return err
	}

	if !cmd.Yes {
		confirmed := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Restore %s as today's documents?", cmd.Date)).
			Description("Older working days are archived first. Documents already written today are replaced.\nStop the server before restoring.").
			Affirmative("Restore").
			Negative("Cancel").
			Value(&confirmed).
			Run()
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Restore cancelled.")
			return nil
		}
	}

	restored, err := a.Archive.Restore(cmd.Date, a.Today())
	if err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}
	fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("✓ Restored %d document(s) from %s", len(restored), cmd.Date)))
	for _, name := range restored {
		fmt.Printf("  %s\n", name)
	}
	return nil
}

// ArchiveCmd snapshots stale working days, or one explicit date.
type ArchiveCmd struct {
	Date string `help:"Snapshot the working set under this date instead of the dates it carries."`
}

func (cmd *ArchiveCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	today := a.Today()

	if cmd.Date != "" {
		if err := a.Archive.Archive(cmd.Date, today); err != nil {
			return err
		}
		fmt.Println(cli.SuccessStyle.Render("✓ Archived " + cmd.Date))
		return nil
	}

	archived, err := a.Archive.ArchiveStale(today)
	if err != nil {
		return err
	}
	if len(archived) == 0 {
		fmt.Println("Nothing to archive: every document belongs to today.")
		return nil
	}
	fmt.Println(cli.SuccessStyle.Render("✓ Archived " + strings.Join(archived, ", ")))
	return nil
}

type PruneCmd struct {
	Days int `help:"Retention window in days (defaults to the configured retentionDays)."`
}

func (cmd *PruneCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	manager := a.Archive
	if cmd.Days > 0 {
		manager = manager.WithRetention(cmd.Days)
	}

	removed, err := manager.Prune(a.Today())
	if err != nil {
		return err
	}
	if len(removed) == 0 {
		fmt.Printf("No snapshots older than %d days.\n", manager.RetentionDays())
		return nil
	}
	fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("✓ Removed %d snapshot(s)", len(removed))))
	for _, date := range removed {
		fmt.Printf("  %s\n", date)
	}
	return nil
}
