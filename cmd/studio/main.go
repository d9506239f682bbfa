// Command studio runs the retouching engine against a folder of photos from
// an interactive terminal, without the HTTP layer.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"luxelens/internal/credits"
	"luxelens/internal/domain"
	"luxelens/internal/engine"
	"luxelens/internal/gateway/gemini"
	"luxelens/internal/infra"
	"luxelens/internal/storage"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

type snapshotMsg engine.Snapshot

type studioModel struct {
	eng      *engine.Engine
	files    []string
	images   []domain.ImagePayload
	snap     engine.Snapshot
	spin     spinner.Model
	status   string
	fatalErr error
}

func newStudioModel(eng *engine.Engine, files []string, images []domain.ImagePayload) studioModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = activeStyle
	return studioModel{
		eng:    eng,
		files:  files,
		images: images,
		snap:   eng.Snapshot(),
		spin:   sp,
		status: "enter: start batch  r: reset  q: quit",
	}
}

func pollSnapshot(eng *engine.Engine) tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return snapshotMsg(eng.Snapshot())
	})
}

func (m studioModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, pollSnapshot(m.eng))
}

func (m studioModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		m.snap = engine.Snapshot(msg)
		return m, pollSnapshot(m.eng)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.snap = m.eng.Reset()
			m.status = "batch discarded"
			return m, nil
		case "enter":
			if m.snap.Batch.Status == domain.BatchStatusRunning {
				m.status = "a batch is already running"
				return m, nil
			}
			if _, err := m.eng.Submit(m.images); err != nil {
				m.status = errStyle.Render(err.Error())
				return m, nil
			}
			m.status = "processing..."
			return m, nil
		}
	}
	return m, nil
}

func (m studioModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("LuxeLens Studio"))
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  credits: %d  mode: %s\n\n", m.snap.RemainingCredits, m.snap.Mode)))

	if len(m.snap.Batch.Items) == 0 {
		for _, f := range m.files {
			b.WriteString(mutedStyle.Render("  • "+filepath.Base(f)) + "\n")
		}
	} else {
		for i, item := range m.snap.Batch.Items {
			label := fmt.Sprintf("item %d", i+1)
			if i < len(m.files) {
				label = filepath.Base(m.files[i])
			}
			switch item.Status {
			case domain.ItemStatusProcessing:
				b.WriteString(fmt.Sprintf("  %s %s\n", m.spin.View(), activeStyle.Render(label)))
			case domain.ItemStatusCompleted:
				b.WriteString(okStyle.Render("  ✓ "+label) + "\n")
			case domain.ItemStatusFailed:
				b.WriteString(errStyle.Render(fmt.Sprintf("  ✗ %s (%s)", label, item.ErrorDetail)) + "\n")
			default:
				b.WriteString(mutedStyle.Render("  · "+label) + "\n")
			}
		}
	}

	b.WriteString("\n")
	switch m.snap.Batch.Status {
	case domain.BatchStatusCompleted:
		b.WriteString(okStyle.Render(fmt.Sprintf("done: %d retouched, %d failed\n",
			m.snap.Batch.CompletedCount(), m.snap.Batch.FailedCount())))
	case domain.BatchStatusAborted:
		b.WriteString(errStyle.Render("aborted: out of credits\n"))
	}
	b.WriteString(mutedStyle.Render(m.status))
	return panelStyle.Render(b.String()) + "\n"
}

func loadImages(dir string) ([]string, []domain.ImagePayload, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".png", ".jpg", ".jpeg", ".webp":
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	if len(files) == 0 {
		return nil, nil, fmt.Errorf("no images found in %s", dir)
	}

	images := make([]domain.ImagePayload, len(files))
	for i, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, err
		}
		mime := "image/png"
		switch strings.ToLower(filepath.Ext(path)) {
		case ".jpg", ".jpeg":
			mime = "image/jpeg"
		case ".webp":
			mime = "image/webp"
		}
		images[i] = domain.ImagePayload{Data: data, MIME: mime}
	}
	return files, images, nil
}

func run() error {
	dir := flag.String("dir", ".", "directory of photos to retouch")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := infra.LoadConfig()
	if err != nil {
		return err
	}

	// The TUI owns the terminal, so logs go to a file instead of stdout.
	logFile, err := os.OpenFile("studio.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger := zerolog.New(logFile).With().Timestamp().Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := credits.NewFileStore(cfg.CreditsFilePath)
	if err != nil {
		return err
	}
	ledger, err := credits.Open(ctx, store, logger)
	if err != nil {
		return err
	}

	client, err := gemini.NewClient(gemini.Options{
		APIKey:       cfg.GeminiAPIKey,
		BaseURL:      cfg.GeminiBaseURL,
		ImageModel:   cfg.GeminiImageModel,
		VideoModel:   cfg.GeminiVideoModel,
		Logger:       &logger,
		PollInterval: cfg.VideoPollEvery,
	})
	if err != nil {
		return err
	}

	var archive *storage.Archive
	if cfg.StoragePath != "" {
		if archive, err = storage.NewArchive(cfg.StoragePath); err != nil {
			return err
		}
	}

	eng := engine.New(ctx, engine.Options{
		Ledger:    ledger,
		Retoucher: client,
		Archive:   archive,
		Logger:    logger,
		StepDelay: cfg.StepDelay,
	})

	files, images, err := loadImages(*dir)
	if err != nil {
		return err
	}

	p := tea.NewProgram(newStudioModel(eng, files, images), tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := finalModel.(studioModel); ok && fm.fatalErr != nil {
		return fm.fatalErr
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "studio:", err)
		os.Exit(1)
	}
}
