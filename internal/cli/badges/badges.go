package badges

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/julianstephens/limitless/internal/badges"
	"github.com/julianstephens/limitless/internal/cli"
	"github.com/julianstephens/limitless/internal/utils"
)

// BadgesCmd prints progress for every badge in the catalog.
type BadgesCmd struct{}

func (cmd *BadgesCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	progress, err := a.Badges.Progress()
	if err != nil {
		return err
	}
	missions, err := a.Badges.Missions()
	if err != nil {
		return err
	}

	fmt.Println(cli.HeaderStyle.Render("Badge progress"))
	fmt.Println(renderProgress(a.Badges.Catalog(), a.Badges.Rules(), progress, a.Today()))

	if len(missions.Active) > 0 {
		fmt.Println()
		fmt.Println(cli.HeaderStyle.Render("Active missions"))
		for _, m := range missions.Active {
			fmt.Printf("  %s  %s %s\n", m.BadgeSlug, m.Title, cli.MutedStyle.Render(fmt.Sprintf("(+%d / -%d xp)", m.RewardXP, abs(m.FailXP))))
		}
	}
	return nil
}

func renderProgress(catalog *badges.Catalog, rules badges.Rules, file badges.ProgressFile, today string) string {
	now, _ := utils.ParseDate(today)
	rows := make([][]string, 0, len(catalog.Badges))
	for _, b := range catalog.Badges {
		p := file.Badges[b.Slug]
		if p == nil {
			p = rules.NewProgress()
		}

		next := "max"
		for _, t := range rules.Tiers {
			if t.XPRequired > p.XP {
				next = fmt.Sprintf("%s xp to %s", humanize.Comma(int64(t.XPRequired-p.XP)), t.Name)
				break
			}
		}
		last := "never"
		if t, err := utils.ParseDate(p.LastActivityDate); err == nil {
			last = humanize.RelTime(t, now, "ago", "from now")
			if p.LastActivityDate == today {
				last = "today"
			}
		}

		rows = append(rows, []string{
			b.Name,
			p.TierName,
			humanize.Comma(int64(p.XP)),
			next,
			fmt.Sprintf("%d (best %d)", p.CurrentStreak, p.LongestStreak),
			fmt.Sprintf("%d/%d", p.MissionsCompleted, p.MissionsFailed),
			last,
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(cli.MutedStyle).
		Headers("BADGE", "TIER", "XP", "NEXT", "STREAK", "MISSIONS", "LAST ACTIVE").
		Rows(rows...).
		Render()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
