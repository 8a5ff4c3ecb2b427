package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/rickgao/hitstreak/internal/history"
	"github.com/rickgao/hitstreak/internal/model"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#BF0D3E"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numStyle    = cellStyle.Align(lipgloss.Right)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "245"})
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// printer writes command output, styled for a terminal or as plain
// tab-separated text. The first write error is kept in err.
type printer struct {
	w      io.Writer
	styled bool
	err    error
}

func newPrinter(w io.Writer, styled bool) *printer {
	return &printer{w: w, styled: styled}
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) title(s string) {
	if p.styled {
		s = titleStyle.Render(s)
	}
	p.printf("%s\n", s)
}

func (p *printer) dim(s string) {
	if p.styled {
		s = dimStyle.Render(s)
	}
	p.printf("%s\n", s)
}

// grid prints rows under headers. numeric marks right-aligned columns and
// color, if set, styles a cell by row and column.
func (p *printer) grid(headers []string, rows [][]string, numeric map[int]bool, color func(row, col int) (lipgloss.Color, bool)) {
	if !p.styled {
		tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, joinTabs(headers))
		for _, r := range rows {
			fmt.Fprintln(tw, joinTabs(r))
		}
		if err := tw.Flush(); err != nil && p.err == nil {
			p.err = err
		}
		return
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			s := cellStyle
			if numeric[col] {
				s = numStyle
			}
			if color != nil {
				if c, ok := color(row, col); ok {
					s = s.Foreground(c).Bold(true)
				}
			}
			return s
		})
	p.printf("%s\n", t.String())
}

func joinTabs(cells []string) string {
	return strings.Join(cells, "\t")
}

func (p *printer) leaderboard(records []model.PlayerStreakRecord, snap model.Snapshot) {
	p.title("MLB Hit Streaks")
	p.dim(fmt.Sprintf("%d of %d players, fetched %s (%s)",
		len(records), len(snap.Records), snap.FetchedAt.Local().Format(time.DateTime), snap.Source))

	if len(records) == 0 {
		p.printf("No players match these filters.\n")
		return
	}

	headers := []string{"#", "Player", "Team", "Pos", "Streak", "Best", "L15", "Hit G", "AVG", "HR"}
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			r.Name,
			r.Team,
			r.Position,
			strconv.Itoa(r.CurrentStreak),
			strconv.Itoa(r.SeasonBest),
			strconv.Itoa(r.Last15),
			strconv.Itoa(r.GamesWithHit),
			r.Batting.AverageString(),
			strconv.Itoa(r.Batting.HomeRuns),
		}
	}

	numeric := map[int]bool{0: true, 4: true, 5: true, 6: true, 7: true, 8: true, 9: true}
	p.grid(headers, rows, numeric, func(row, col int) (lipgloss.Color, bool) {
		if col != 2 || row < 0 || row >= len(records) {
			return "", false
		}
		return lipgloss.Color(history.Color(records[row].Team)), true
	})
}

func (p *printer) comparison(leader model.PlayerStreakRecord, c history.Comparison) {
	p.printf("\n")
	p.title("Chasing DiMaggio")
	p.printf("%s (%s) has hit in %d straight games, %.1f%% of the record %d.\n",
		leader.Name, leader.Team, c.Streak, c.PctOfRecord, c.Record)
	if c.GamesToTie > 0 {
		p.dim(fmt.Sprintf("%d more games to tie.", c.GamesToTie))
	}
}

func (p *printer) famous(streaks []model.HistoricalStreak) {
	p.title("Famous Hit Streaks")

	rows := make([][]string, len(streaks))
	for i, s := range streaks {
		rows[i] = []string{strconv.Itoa(i + 1), s.Player, s.Team, strconv.Itoa(s.Year), strconv.Itoa(s.Streak)}
	}
	p.grid([]string{"#", "Player", "Team", "Year", "Games"}, rows, map[int]bool{0: true, 3: true, 4: true}, nil)
}

func (p *printer) streakComparison(c history.Comparison) {
	p.printf("\nA %d-game streak is %.1f%% of the record.", c.Streak, c.PctOfRecord)
	if c.GamesToTie > 0 {
		p.printf(" %d more games to tie.", c.GamesToTie)
	}
	if c.WouldQualify {
		p.printf(" It would rank #%d on this list.", c.Rank)
	}
	p.printf("\n")
}

func (p *printer) snapshots(infos []model.SnapshotInfo) {
	p.title("Stored Snapshots")
	if len(infos) == 0 {
		p.printf("No snapshots stored.\n")
		return
	}

	rows := make([][]string, len(infos))
	for i, info := range infos {
		rows[i] = []string{
			info.ID.String(),
			info.FetchedAt.Local().Format(time.DateTime),
			info.Source,
			strconv.Itoa(info.Count),
		}
	}
	p.grid([]string{"ID", "Fetched", "Source", "Players"}, rows, map[int]bool{3: true}, nil)
}
