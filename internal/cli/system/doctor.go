package system

import (
	stderrors "errors"
	"fmt"
	"sort"

	"github.com/julianstephens/limitless/internal/badges"
	"github.com/julianstephens/limitless/internal/cli"
	"github.com/julianstephens/limitless/internal/clock"
	"github.com/julianstephens/limitless/internal/documents"
	"github.com/julianstephens/limitless/internal/storage"
	"github.com/julianstephens/limitless/internal/utils"
)

type DoctorCmd struct{}

type check struct {
	name string
	run  func(ctx *cli.Context) error
	// needsStore checks are skipped when storage is unreachable
	needsStore bool
	// warnOnly failures do not fail the command
	warnOnly bool
}

var checks = []check{
	{name: "Storage reachable", run: checkStorageReachable},
	{name: "Clock/timezone", run: checkTimezone},
	{name: "Badge rules", run: checkBadgeRules},
	{name: "Badge catalog", run: checkCatalog},
	{name: "Documents readable", run: checkDocuments, needsStore: true},
	{name: "Snapshot dates", run: checkSnapshots, needsStore: true},
	{name: "History retention", run: checkRetention, needsStore: true, warnOnly: true},
	{name: "Badge progress", run: checkBadgeProgress, needsStore: true},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	storeReachable := false
	for _, c := range checks {
		if c.needsStore && !storeReachable {
			fmt.Println(cli.MutedStyle.Render(fmt.Sprintf("⊘ %s: SKIPPED (storage not reachable)", c.name)))
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("✓ %s: OK", c.name)))
			if c.name == "Storage reachable" {
				storeReachable = true
			}
		case c.warnOnly:
			fmt.Println(cli.WarningStyle.Render(fmt.Sprintf("⚠ %s: WARNING", c.name)))
			fmt.Printf("   %v\n", err)
		default:
			fmt.Println(cli.DangerStyle.Render(fmt.Sprintf("✗ %s: FAIL", c.name)))
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	fmt.Println("All diagnostics passed!")
	return nil
}

func checkStorageReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load storage: %w", err)
	}
	if _, err := ctx.Store.ListDocuments(); err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}
	return nil
}

func checkTimezone(ctx *cli.Context) error {
	if !utils.ValidateTimezone(ctx.Config.Timezone) {
		return fmt.Errorf("invalid timezone %q", ctx.Config.Timezone)
	}
	if !utils.IsValidDate(clock.Today(ctx.Clock)) {
		return fmt.Errorf("clock produced an invalid date")
	}
	return nil
}

func checkBadgeRules(ctx *cli.Context) error {
	return ctx.Config.Badges.Validate()
}

func checkCatalog(ctx *cli.Context) error {
	_, err := badges.LoadCatalog(ctx.Config.DataDir)
	return err
}

func checkDocuments(ctx *cli.Context) error {
	var problems []string
	for _, name := range documents.Names() {
		data, err := ctx.Store.ReadDocument(name)
		if stderrors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		doc, err := documents.Decode(data)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v (served as stub)", name, err))
			continue
		}
		schema, _ := documents.Lookup(name)
		if schema.Daily && !doc.IsNull("date") && !utils.IsValidDate(doc.Date()) {
			problems = append(problems, fmt.Sprintf("%s: malformed date %v", name, doc["date"]))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%d problem(s): %v", len(problems), problems)
	}
	return nil
}

func checkSnapshots(ctx *cli.Context) error {
	dates, err := ctx.Store.ListSnapshots()
	if err != nil {
		return err
	}
	today := clock.Today(ctx.Clock)
	for _, date := range dates {
		if !utils.IsValidDate(date) {
			return fmt.Errorf("malformed snapshot date %q", date)
		}
		if date >= today {
			return fmt.Errorf("snapshot %s is not in the past", date)
		}
	}
	return nil
}

func checkRetention(ctx *cli.Context) error {
	dates, err := ctx.Store.ListSnapshots()
	if err != nil {
		return err
	}
	cutoff, err := utils.AddDays(clock.Today(ctx.Clock), -ctx.Config.RetentionDays)
	if err != nil {
		return err
	}
	stale := 0
	for _, date := range dates {
		if date < cutoff {
			stale++
		}
	}
	if stale > 0 {
		return fmt.Errorf("%d snapshot(s) older than %d days; run 'limitless prune'", stale, ctx.Config.RetentionDays)
	}
	return nil
}

func checkBadgeProgress(ctx *cli.Context) error {
	data, err := ctx.Store.ReadDocument(documents.BadgeProgress)
	if stderrors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	doc, err := documents.Decode(data)
	if err != nil {
		return fmt.Errorf("badge-progress is corrupt: %w", err)
	}
	var file badges.ProgressFile
	if err := doc.Into(&file); err != nil {
		return fmt.Errorf("badge-progress has an unexpected shape: %w", err)
	}

	rules := ctx.Config.Badges
	slugs := make([]string, 0, len(file.Badges))
	for slug := range file.Badges {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	for _, slug := range slugs {
		p := file.Badges[slug]
		if p == nil {
			continue
		}
		if p.XP < 0 {
			return fmt.Errorf("%s: negative xp %d", slug, p.XP)
		}
		if tier := rules.TierFor(p.XP); tier.Level != p.Tier || tier.Name != p.TierName {
			return fmt.Errorf("%s: tier %d (%s) does not match %d xp", slug, p.Tier, p.TierName, p.XP)
		}
		if p.CurrentStreak > p.LongestStreak {
			return fmt.Errorf("%s: current streak %d exceeds longest %d", slug, p.CurrentStreak, p.LongestStreak)
		}
	}
	return nil
}
