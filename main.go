package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/nconklindev/lms2omr/internal/config"
	"github.com/nconklindev/lms2omr/internal/converter"
	"github.com/nconklindev/lms2omr/internal/logger"
	"github.com/nconklindev/lms2omr/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/pflag"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	conf, err := config.Load(args)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	if conf.Version {
		fmt.Printf("lms2omr %s\ncommit: %s\nbuilt: %s\n", version, commit, date)
		return 0
	}

	appLog, closeLog, err := newLogger(conf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer closeLog()

	conv := converter.New(appLog)

	if conf.Headless() {
		return runHeadless(conv, conf)
	}

	model := ui.InitialModel(conv, ui.Options{
		StartDir:  conf.StartDir,
		OutputDir: conf.OutputDir,
		Logger:    appLog,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	return 0
}

func runHeadless(conv *converter.Converter, conf *config.Config) int {
	result, err := conv.Convert(context.Background(), converter.Request{
		PrimaryFile: conf.Primary,
		AbsentFile:  conf.Absent,
		OutputDir:   conf.OutputDir,
	}, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, ui.ErrorStyle.Render("✗ "+converter.UserMessage(err)))
		return 1
	}

	fmt.Println(ui.TitleStyle.Render("✓ Conversion Complete!"))
	fmt.Println(lipgloss.NewStyle().PaddingLeft(2).Render(ui.Summary(result, 120)))
	return 0
}

// newLogger writes to the configured log file. The TUI owns stdout, so
// logs never go to the terminal.
func newLogger(conf *config.Config) (logger.Logger, func(), error) {
	var (
		out     io.Writer = io.Discard
		closers []func()
	)
	if conf.LogFile != "" {
		f, err := tea.LogToFile(conf.LogFile, "lms2omr")
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out = f
		closers = append(closers, func() { f.Close() })
	}

	var appLog logger.Logger = logger.NewStdLogger(log.New(out, "lms2omr ", log.LstdFlags), conf.Debug)
	if conf.RollbarToken != "" {
		rb := logger.NewRollbarLogger(appLog, logger.RollbarOptions{
			Token:       conf.RollbarToken,
			Environment: conf.Env,
			CodeVersion: version,
		})
		closers = append(closers, rb.Close)
		appLog = rb
	}

	return appLog, func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}, nil
}
