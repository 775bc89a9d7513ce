// Package tui is the interactive terminal gallery.
package tui

import (
	"context"
	"image"
	"log/slog"
	"strings"

	"github.com/aluiziolira/go-cat-gallery/gallery"
	"github.com/aluiziolira/go-cat-gallery/models"
	"github.com/aluiziolira/go-cat-gallery/render"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	minArtRows    = 2
)

// Controller is the part of gallery.Controller the model drives.
type Controller interface {
	RequestNewImage(ctx context.Context) (models.FetchAttempt, bool)
	OnImageDisplayFailure()
}

// ImageLoader downloads and decodes the image behind a source URL.
type ImageLoader interface {
	Load(ctx context.Context, url string) (image.Image, error)
}

type imageLoadedMsg struct {
	url string
	img image.Image
	err error
}

type attemptDoneMsg struct {
	attempt models.FetchAttempt
	started bool
}

type displayFailureReportedMsg struct{}

// Model is the Bubble Tea model rendering both surfaces.
type Model struct {
	ctx     context.Context
	ctrl    Controller
	loader  ImageLoader
	keys    KeyMap
	help    help.Model
	spinner spinner.Model

	imageURL     string
	imageAlt     string
	img          image.Image
	art          string
	fetchingArt  bool
	errorText    string
	errorVisible bool
	enabled      bool
	label        string

	width  int
	height int
}

// NewModel builds the model. The trigger starts enabled.
func NewModel(ctx context.Context, ctrl Controller, loader ImageLoader) *Model {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Model{
		ctx:      ctx,
		ctrl:     ctrl,
		loader:   loader,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(lipgloss.NewStyle().Foreground(ColorAccent))),
		imageAlt: gallery.AltPlaceholder,
		enabled:  true,
		label:    gallery.LabelReady,
		width:    defaultWidth,
		height:   defaultHeight,
	}
}

// Init fires the automatic first request.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.requestCmd(), m.spinner.Tick)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.rerender()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			m.rerender()
			return m, nil
		case key.Matches(msg, m.keys.NewPhoto):
			if !m.enabled {
				return m, nil
			}
			return m, m.requestCmd()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case imageSourceMsg:
		m.imageURL = string(msg)
		m.img = nil
		m.art = ""
		m.fetchingArt = m.imageURL != ""
		if m.fetchingArt {
			return m, m.loadCmd(m.imageURL)
		}
		return m, nil

	case imageLoadedMsg:
		if msg.url != m.imageURL {
			return m, nil
		}
		m.fetchingArt = false
		if msg.err != nil {
			slog.Warn("image failed to load",
				slog.String("url", msg.url),
				slog.Any("error", msg.err),
			)
			return m, m.displayFailureCmd()
		}
		m.img = msg.img
		m.rerender()
		return m, nil

	case imageAltMsg:
		m.imageAlt = string(msg)
	case errorTextMsg:
		m.errorText = string(msg)
		m.rerender()
	case errorVisibleMsg:
		m.errorVisible = bool(msg)
		m.rerender()
	case triggerEnabledMsg:
		m.enabled = bool(msg)
	case triggerLabelMsg:
		m.label = string(msg)

	case attemptDoneMsg:
		if msg.started {
			slog.Debug("attempt finished",
				slog.String("status", msg.attempt.Status.String()),
				slog.Duration("duration", msg.attempt.Duration()),
			)
		}
	}
	return m, nil
}

func (m *Model) View() string {
	var photo string
	switch {
	case m.art != "":
		photo = m.art
	case m.fetchingArt:
		photo = placeholderStyle.Render(m.spinner.View() + " Fetching photo...")
	default:
		photo = placeholderStyle.Render(m.imageAlt)
	}
	return lipgloss.JoinVertical(lipgloss.Center, m.header(), photo, m.footer())
}

func (m *Model) header() string {
	return titleStyle.Render("🐱 Random Cat Gallery")
}

func (m *Model) footer() string {
	var sections []string
	if m.errorVisible && m.errorText != "" {
		sections = append(sections, errorStyle.Width(max(m.width-2, 20)).Render(m.errorText))
	}
	sections = append(sections, "", m.buttonView(), "", m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Center, sections...)
}

// chromeHeight is the number of rows around the image, measured from the
// rendered header and footer since the error text wraps with the width.
func (m *Model) chromeHeight() int {
	return lipgloss.Height(m.header()) + lipgloss.Height(m.footer())
}

func (m *Model) buttonView() string {
	if m.enabled {
		return buttonStyle.Render(m.label)
	}
	return buttonDisabledStyle.Render(m.spinner.View() + " " + m.label)
}

func (m *Model) rerender() {
	if m.img == nil {
		m.art = ""
		return
	}
	cols := m.width - 2
	rows := max(m.height-m.chromeHeight(), minArtRows)
	m.art = strings.TrimRight(render.HalfBlocks(m.img, cols, rows), "\n")
}

func (m *Model) requestCmd() tea.Cmd {
	ctx := m.ctx
	ctrl := m.ctrl
	return func() tea.Msg {
		if ctx.Err() != nil {
			return nil
		}
		attempt, started := ctrl.RequestNewImage(ctx)
		return attemptDoneMsg{attempt: attempt, started: started}
	}
}

func (m *Model) loadCmd(url string) tea.Cmd {
	ctx := m.ctx
	loader := m.loader
	return func() tea.Msg {
		img, err := loader.Load(ctx, url)
		return imageLoadedMsg{url: url, img: img, err: err}
	}
}

// displayFailureCmd reports off the update loop, since the controller
// answers through the surface and so through Program.Send.
func (m *Model) displayFailureCmd() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		ctrl.OnImageDisplayFailure()
		return displayFailureReportedMsg{}
	}
}
