// Package report renders daily scan results into CSV and Markdown files.
// New rows are prepended so the freshest session sits on top, and a file is
// never rewritten twice for the same date.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/trade-stasvinokur/momentum-strategy-cameron/internal/domain/models"
	applogger "github.com/trade-stasvinokur/momentum-strategy-cameron/pkg/logger"
)

const csvFileName = "strategy_results.csv"

// Row is one strategy verdict line in the daily report.
type Row struct {
	Date       string `csv:"date"`
	Ticker     string `csv:"ticker"`
	Gap        string `csv:"gap"`
	PrevClose  string `csv:"prev_close"`
	Open       string `csv:"open"`
	Strategy   string `csv:"strategy"`
	Status     string `csv:"status"`
	Entry      string `csv:"entry"`
	Stop       string `csv:"stop"`
	Target     string `csv:"target"`
	PL         string `csv:"pl"`
	Time       string `csv:"time"`
	Vwap       string `csv:"vwap"`
	Support    string `csv:"support"`
	Resistance string `csv:"resistance"`
}

// Writer renders reports into a directory.
type Writer struct {
	dir     string
	formats []string
	l       *applogger.Logger
	msk     *time.Location
}

func NewWriter(dir string, formats []string, l *applogger.Logger) *Writer {
	msk, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		msk = time.FixedZone("MSK", 3*60*60)
	}
	return &Writer{dir: dir, formats: formats, l: l, msk: msk}
}

// BuildRows flattens gap records and their analyses into report rows.
func (w *Writer) BuildRows(date string, gaps []models.GapRecord, analyses []*models.TickerAnalysis) []Row {
	byTicker := make(map[string]models.GapRecord, len(gaps))
	for _, g := range gaps {
		byTicker[g.Ticker] = g
	}

	rows := make([]Row, 0, len(analyses)*9)
	for _, a := range analyses {
		if a == nil {
			continue
		}
		g := byTicker[a.Ticker]
		base := Row{
			Date:      date,
			Ticker:    a.Ticker,
			Gap:       fmt.Sprintf("%.2f", g.Gap*100),
			PrevClose: fmt.Sprintf("%.2f", g.PrevClose),
			Open:      fmt.Sprintf("%.2f", g.Open),
		}
		if a.Vwap != nil {
			base.Vwap = fmt.Sprintf("%.2f", a.Vwap.VWAP)
			base.Support = fmt.Sprintf("%.2f", a.Vwap.Support)
			base.Resistance = fmt.Sprintf("%.2f", a.Vwap.Resistance)
		}

		if a.GapAndGo != nil {
			rows = append(rows, w.strategyRow(base, "Gap&Go", a.GapAndGo.PatternResult))
		}
		for _, tf := range []string{"1m", "5m"} {
			if fb, ok := a.FlatBreakout[tf]; ok && fb != nil {
				rows = append(rows, w.strategyRow(base, tf+" Flat-Top", fb.FlatTop))
				rows = append(rows, w.strategyRow(base, tf+" Flat-Bottom", fb.FlatBottom))
			}
			if r, ok := a.BullFlag[tf]; ok && r != nil {
				rows = append(rows, w.strategyRow(base, tf+" BullFlag", *r))
			}
			if r, ok := a.FirstPullback[tf]; ok && r != nil {
				rows = append(rows, w.strategyRow(base, tf+" FirstPullback", *r))
			}
			if r, ok := a.ABCD[tf]; ok && r != nil {
				rows = append(rows, w.strategyRow(base, tf+" ABCD", *r))
			}
		}
	}
	return rows
}

func (w *Writer) strategyRow(base Row, strategy string, r models.PatternResult) Row {
	row := base
	row.Strategy = strategy
	if r.Triggered {
		row.Status = "✅"
	} else {
		row.Status = "❌"
	}
	if r.EntryPrice != nil {
		row.Entry = fmt.Sprintf("%.2f", *r.EntryPrice)
	}
	if r.StopPrice != nil {
		row.Stop = fmt.Sprintf("%.2f", *r.StopPrice)
	}
	if r.TargetPrice != nil {
		row.Target = fmt.Sprintf("%.2f", *r.TargetPrice)
	}
	if r.Triggered && r.EntryPrice != nil && r.TargetPrice != nil {
		row.PL = fmt.Sprintf("+%.2f", *r.TargetPrice-*r.EntryPrice)
	}
	if r.TriggerTime != nil {
		row.Time = r.TriggerTime.In(w.msk).Format("15:04")
	}
	return row
}

// Write renders all configured formats. The CSV accumulates across days,
// the Markdown file is per date.
func (w *Writer) Write(date string, rows []Row) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	for _, format := range w.formats {
		var err error
		switch format {
		case "csv":
			err = w.writeCSV(date, rows)
		case "md":
			err = w.writeMarkdown(date, rows)
		default:
			err = fmt.Errorf("unknown report format: %s", format)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeCSV(date string, rows []Row) error {
	path := filepath.Join(w.dir, csvFileName)

	var existing []Row
	if f, err := os.Open(path); err == nil {
		err = gocsv.UnmarshalFile(f, &existing)
		f.Close()
		if err != nil {
			return fmt.Errorf("read existing report: %w", err)
		}
	}
	if len(existing) > 0 && existing[0].Date == date {
		if w.l != nil {
			w.l.Info("report already written for date", applogger.String("date", date))
		}
		return nil
	}

	all := make([]Row, 0, len(rows)+len(existing))
	all = append(all, rows...)
	all = append(all, existing...)
	return w.atomicWrite(path, func(f *os.File) error {
		return gocsv.MarshalFile(&all, f)
	})
}

func (w *Writer) writeMarkdown(date string, rows []Row) error {
	path := filepath.Join(w.dir, fmt.Sprintf("strategy_results_%s.md", date))

	var b strings.Builder
	fmt.Fprintf(&b, "# Strategy results %s\n\n", date)
	if len(rows) == 0 {
		b.WriteString("No gappers found.\n")
	} else {
		b.WriteString("| Ticker | Gap % | Strategy | Status | Entry | Stop | Target | P/L | Time | VWAP | Support | Resistance |\n")
		b.WriteString("|---|---|---|---|---|---|---|---|---|---|---|---|\n")
		for _, r := range rows {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
				r.Ticker, r.Gap, r.Strategy, r.Status, r.Entry, r.Stop, r.Target, r.PL, r.Time, r.Vwap, r.Support, r.Resistance)
		}
	}
	return w.atomicWrite(path, func(f *os.File) error {
		_, err := f.WriteString(b.String())
		return err
	})
}

// atomicWrite writes into a temp file in the same directory and renames it
// over the target so readers never see a half-written report.
func (w *Writer) atomicWrite(path string, fill func(*os.File) error) error {
	tmp, err := os.CreateTemp(w.dir, ".report-*")
	if err != nil {
		return fmt.Errorf("create temp report: %w", err)
	}
	tmpName := tmp.Name()
	if err := fill(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close report: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace report: %w", err)
	}
	if w.l != nil {
		w.l.Info("report written", applogger.String("path", path))
	}
	return nil
}
