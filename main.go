package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"medclarify/clarify"
	"medclarify/claude"
	"medclarify/document"
	"medclarify/domain"
	"medclarify/imageprep"
	"medclarify/logging"
	"medclarify/qa"
	"medclarify/tui"
)

// Build info - set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// renderWidth is the width translations are rendered at in the terminal
const renderWidth = 80

// translateTimeout bounds one translation including retries
const translateTimeout = 5 * time.Minute

// allowedExtensions are offered by the file picker
var allowedExtensions = []string{".jpg", ".jpeg", ".png", ".pdf"}

// app holds the wired components shared by every workflow
type app struct {
	client       *claude.Client
	pipeline     *clarify.Pipeline
	conversation *qa.Conversation
	logger       zerolog.Logger
}

// newApp builds the client and orchestrators from the environment
func newApp(logger zerolog.Logger, opts ...claude.ClientOption) (*app, error) {
	opts = append([]claude.ClientOption{claude.WithLogger(logging.Module(logger, "claude"))}, opts...)
	client, err := claude.NewClientFromEnv(opts...)
	if err != nil {
		return nil, err
	}

	translator := clarify.NewTranslator(client, clarify.WithLogger(logging.Module(logger, "clarify")))
	prep := imageprep.New(imageprep.WithLogger(logging.Module(logger, "imageprep")))

	return &app{
		client:       client,
		pipeline:     clarify.NewPipeline(prep, translator, logging.Module(logger, "pipeline")),
		conversation: qa.NewConversation(client, qa.WithLogger(logging.Module(logger, "qa"))),
		logger:       logger,
	}, nil
}

func main() {
	// Load .env file if it exists (won't error if missing)
	_ = godotenv.Load()

	logger, closer, err := logging.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, tui.ErrorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
	code := run(os.Args[1:], logger)
	closer.Close()
	os.Exit(code)
}

// run dispatches a subcommand and returns the process exit code
func run(args []string, logger zerolog.Logger) int {
	if len(args) > 0 {
		switch args[0] {
		case "-v", "--version", "version":
			printVersion(os.Stdout)
			return 0
		case "-h", "--help", "help":
			printHelp(os.Stdout)
			return 0
		case "translate":
			return runTranslate(args[1:], logger)
		case "ask":
			return runAsk(args[1:], logger)
		case "ping":
			return runPing(logger)
		case "update":
			return runUpdate(logger)
		default:
			fmt.Fprintln(os.Stderr, tui.ErrorStyle.Render("Unknown command: "+args[0]))
			printHelp(os.Stderr)
			return 2
		}
	}

	return runInteractive(logger)
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "medclarify %s\n", version)
	fmt.Fprintf(w, "  commit: %s\n", commit)
	fmt.Fprintf(w, "  built:  %s\n", date)
	fmt.Fprintf(w, "  go:     %s\n", runtime.Version())
	fmt.Fprintf(w, "  os/arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}

func runInteractive(logger zerolog.Logger) int {
	fmt.Println(tui.GetHeader())

	// Configuration problems surface before any workflow starts
	if err := claude.CheckConfig(); err != nil {
		fmt.Println(tui.ErrorStyle.Render("Error: " + err.Error()))
		fmt.Println(tui.InfoStyle.Render(claude.GetAPIKeyHelp()))
		return 1
	}

	events, observe := tui.ActivityChannel(64)
	a, err := newApp(logger, claude.WithObserver(observe))
	if err != nil {
		fmt.Println(tui.ErrorStyle.Render("Error: " + err.Error()))
		return 1
	}

	for {
		if !runDocumentWorkflow(a, events) {
			break
		}
	}

	fmt.Println(tui.SubtitleStyle.Render("\nTake care! Remember to bring your questions to your doctor."))
	return 0
}

// runDocumentWorkflow reads one document, shows its translation and offers
// follow-up actions. It reports whether the user wants another document.
func runDocumentWorkflow(a *app, events <-chan claude.Event) bool {
	var source string
	sourceSelect := huh.NewSelect[string]().
		Title("What would you like explained?").
		Options(
			huh.NewOption("A photo or scan of a document", "file"),
			huh.NewOption("Text copied from a document", "text"),
		).
		Value(&source)

	err := huh.NewForm(huh.NewGroup(sourceSelect)).
		WithTheme(huh.ThemeCatppuccin()).
		Run()
	if err != nil {
		return false
	}

	var result *clarify.TranslationResult
	switch source {
	case "text":
		result, err = translateTextInteractive(a)
	default:
		result, err = translateFileInteractive(a)
	}

	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return askToContinue()
		}
		fmt.Println(tui.StatusCard("✗", "Could not explain this document", domain.UserMessage(err), tui.StepError, renderWidth))
		a.logger.Error().Err(err).Msg("translation failed")
		return askToContinue()
	}

	fmt.Println(tui.RenderTranslation(result, renderWidth))
	return afterTranslation(a, result, events)
}

func translateFileInteractive(a *app) (*clarify.TranslationResult, error) {
	var path string
	startDir, _ := os.Getwd()

	filePicker := huh.NewFilePicker().
		Title("Select your document").
		Description("A clear, well-lit photo works best (JPEG or PNG, up to 10MB)").
		Picking(true).
		CurrentDirectory(startDir).
		ShowHidden(false).
		ShowPermissions(false).
		ShowSize(true).
		Height(15).
		AllowedTypes(allowedExtensions).
		Value(&path)

	err := huh.NewForm(huh.NewGroup(filePicker)).
		WithTheme(huh.ThemeCatppuccin()).
		Run()
	if err != nil {
		return nil, err
	}

	asset, err := document.FromPath(path)
	if err != nil {
		return nil, err
	}

	fmt.Println(tui.StatusCard("📄", asset.Name(), document.FormatSize(asset.SizeBytes), tui.StepCompleted, renderWidth))

	var result *clarify.TranslationResult
	var translateErr error

	err = spinner.New().
		Title("Reading your document and putting it in plain language...").
		Action(func() {
			ctx, cancel := context.WithTimeout(context.Background(), translateTimeout)
			defer cancel()
			result, translateErr = a.pipeline.Process(ctx, asset, nil)
		}).
		Run()
	if err != nil {
		return nil, err
	}
	return result, translateErr
}

func translateTextInteractive(a *app) (*clarify.TranslationResult, error) {
	var text string
	textInput := huh.NewText().
		Title("Paste the text of your document").
		Description("Lab results, discharge notes, prescriptions...").
		Placeholder("Paste here...").
		CharLimit(20000).
		Lines(12).
		Value(&text)

	err := huh.NewForm(huh.NewGroup(textInput)).
		WithTheme(huh.ThemeCatppuccin()).
		Run()
	if err != nil {
		return nil, err
	}

	var result *clarify.TranslationResult
	var translateErr error

	err = spinner.New().
		Title("Putting your document in plain language...").
		Action(func() {
			ctx, cancel := context.WithTimeout(context.Background(), translateTimeout)
			defer cancel()
			result, translateErr = a.pipeline.ProcessText(ctx, text)
		}).
		Run()
	if err != nil {
		return nil, err
	}
	return result, translateErr
}

// afterTranslation offers questions and export for a finished translation
func afterTranslation(a *app, result *clarify.TranslationResult, events <-chan claude.Event) bool {
	for {
		var choice string
		next := huh.NewSelect[string]().
			Title("What next?").
			Options(
				huh.NewOption("Ask questions about this document", "ask"),
				huh.NewOption("Save as markdown", "save"),
				huh.NewOption("Explain another document", "another"),
				huh.NewOption("Exit", "exit"),
			).
			Value(&choice)

		err := huh.NewForm(huh.NewGroup(next)).
			WithTheme(huh.ThemeCatppuccin()).
			Run()
		if err != nil {
			return false
		}

		switch choice {
		case "ask":
			if err := runChat(a, result, events); err != nil {
				fmt.Println(tui.ErrorStyle.Render("Error: " + err.Error()))
			}
		case "save":
			saveInteractive(result)
		case "another":
			return true
		default:
			return false
		}
	}
}

func runChat(a *app, result *clarify.TranslationResult, events <-chan claude.Event) error {
	session := qa.NewSession(result.Context())
	a.logger.Debug().Str("session", session.ID).Msg("starting chat")

	model := tui.NewChatModel(a.conversation, session,
		tui.WithActivity(events, a.client.Model()),
		tui.WithChatTitle(result.DocumentType),
	)

	_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}

func saveInteractive(result *clarify.TranslationResult) {
	path := clarify.SuggestedFilename(result)
	pathInput := huh.NewInput().
		Title("Save to").
		Value(&path)

	if err := huh.NewForm(huh.NewGroup(pathInput)).WithTheme(huh.ThemeCatppuccin()).Run(); err != nil {
		return
	}

	opts := clarify.ExportOptions{AddFrontMatter: true, Source: "medclarify " + version}
	if document.Exists(path) {
		var overwrite bool
		confirm := huh.NewConfirm().
			Title(fmt.Sprintf("%s already exists. Replace it?", path)).
			Affirmative("Replace").
			Negative("Cancel").
			Value(&overwrite)
		if err := huh.NewForm(huh.NewGroup(confirm)).WithTheme(huh.ThemeCatppuccin()).Run(); err != nil || !overwrite {
			fmt.Println(tui.InfoStyle.Render("Save cancelled."))
			return
		}
		opts.Overwrite = true
	}

	n, err := clarify.WriteMarkdown(path, result, opts)
	if err != nil {
		fmt.Println(tui.ErrorStyle.Render("Error: " + err.Error()))
		return
	}
	fmt.Println(tui.SuccessStyle.Render(fmt.Sprintf("✅ Saved %s (%s)", path, document.FormatSize(n))))
}

func askToContinue() bool {
	var choice string
	selectNext := huh.NewSelect[string]().
		Title("What next?").
		Options(
			huh.NewOption("Try another document", "another"),
			huh.NewOption("Exit", "exit"),
		).
		Value(&choice)

	err := huh.NewForm(huh.NewGroup(selectNext)).
		WithTheme(huh.ThemeCatppuccin()).
		Run()
	if err != nil {
		return false
	}

	return choice == "another"
}

func printHelp(w io.Writer) {
	help := `
🩺 MedClarify - your medical documents in plain language

USAGE:
    medclarify                      Interactive mode
    medclarify <command> [OPTIONS]

COMMANDS:
    translate <file>        Explain a document and print the result
    ask <file>              Explain a document and answer one question about it
    ping                    Test the connection to the API
    update                  Update medclarify to the latest release
    version                 Print version information

Run 'medclarify translate --help' for command options.

ENVIRONMENT:
    ANTHROPIC_API_KEY       Your Anthropic API key (or CLAUDE_API_KEY)
    MEDCLARIFY_MODEL        Model name
    MEDCLARIFY_LOG_LEVEL    debug, info, warn (default), error, disabled
    MEDCLARIFY_LOG_FILE     Write logs to a file instead of stderr
`
	fmt.Fprintln(w, strings.TrimRight(help, "\n"))
	fmt.Fprintln(w)
	fmt.Fprintln(w, clarify.Disclaimer)
}
