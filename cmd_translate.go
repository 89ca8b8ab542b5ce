package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"medclarify/clarify"
	"medclarify/claude"
	"medclarify/document"
	"medclarify/domain"
	"medclarify/imageprep"
	"medclarify/qa"
	"medclarify/tui"
)

// TranslateOptions holds the configuration for non-interactive translation
type TranslateOptions struct {
	Text        bool
	Crop        *imageprep.Rect
	JSON        bool
	Output      string
	Overwrite   bool
	FrontMatter bool
	Question    string
	Help        bool
}

// parseTranslateArgs parses translate and ask command arguments
func parseTranslateArgs(args []string) (*TranslateOptions, []string, error) {
	opts := &TranslateOptions{}
	var sources []string

	i := 0
	for i < len(args) {
		arg := args[i]

		switch arg {
		case "--text", "-t":
			opts.Text = true
			i++
		case "--crop":
			if i+1 >= len(args) {
				return nil, nil, fmt.Errorf("--crop requires a value like x,y,width,height")
			}
			crop, err := parseCrop(args[i+1])
			if err != nil {
				return nil, nil, err
			}
			opts.Crop = crop
			i += 2
		case "--json":
			opts.JSON = true
			i++
		case "-o", "--output":
			if i+1 < len(args) {
				opts.Output = args[i+1]
				i += 2
			} else {
				i++
			}
		case "--overwrite":
			opts.Overwrite = true
			i++
		case "--frontmatter":
			opts.FrontMatter = true
			i++
		case "-q", "--question":
			if i+1 < len(args) {
				opts.Question = args[i+1]
				i += 2
			} else {
				i++
			}
		case "--help", "-h":
			opts.Help = true
			i++
		default:
			if arg == "-" || !strings.HasPrefix(arg, "-") {
				sources = append(sources, arg)
			}
			i++
		}
	}

	return opts, sources, nil
}

// parseCrop parses "x,y,width,height" in displayed pixels
func parseCrop(s string) (*imageprep.Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("invalid crop %q: expected x,y,width,height", s)
	}

	var vals [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid crop %q: %w", s, err)
		}
		vals[i] = n
	}

	if vals[0] < 0 || vals[1] < 0 {
		return nil, fmt.Errorf("invalid crop %q: origin must not be negative", s)
	}
	if vals[2] <= 0 || vals[3] <= 0 {
		return nil, fmt.Errorf("invalid crop %q: width and height must be positive", s)
	}

	return &imageprep.Rect{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}, nil
}

func runTranslate(args []string, logger zerolog.Logger) int {
	opts, sources, err := parseTranslateArgs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, tui.ErrorStyle.Render("Error: "+err.Error()))
		return 2
	}
	if opts.Help {
		printTranslateHelp(os.Stdout)
		return 0
	}
	if len(sources) != 1 {
		fmt.Fprintln(os.Stderr, tui.ErrorStyle.Render("Error: exactly one document is required"))
		printTranslateHelp(os.Stderr)
		return 2
	}

	a, code := newCLIApp(logger)
	if a == nil {
		return code
	}

	result, err := translateSource(a, sources[0], opts)
	if err != nil {
		printFailure(err)
		return 1
	}

	return emitResult(result, sources[0], opts)
}

func runAsk(args []string, logger zerolog.Logger) int {
	opts, sources, err := parseTranslateArgs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, tui.ErrorStyle.Render("Error: "+err.Error()))
		return 2
	}
	if opts.Help {
		printTranslateHelp(os.Stdout)
		return 0
	}
	if len(sources) != 1 || strings.TrimSpace(opts.Question) == "" {
		fmt.Fprintln(os.Stderr, tui.ErrorStyle.Render("Error: ask needs one document and --question"))
		printTranslateHelp(os.Stderr)
		return 2
	}

	a, code := newCLIApp(logger)
	if a == nil {
		return code
	}

	result, err := translateSource(a, sources[0], opts)
	if err != nil {
		printFailure(err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), translateTimeout)
	defer cancel()

	session, err := a.conversation.Ask(ctx, qa.NewSession(result.Context()), opts.Question)
	if err != nil {
		printFailure(err)
		return 1
	}

	fmt.Println(tui.BoxStyle.Width(renderWidth).Render(session.Last().Content))
	fmt.Println(tui.WarningStyle.Render(clarify.Disclaimer))
	return 0
}

func runPing(logger zerolog.Logger) int {
	a, code := newCLIApp(logger)
	if a == nil {
		return code
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	start := time.Now()
	resp, err := a.client.Ping(ctx)
	if err != nil {
		printFailure(err)
		return 1
	}

	fmt.Println(tui.SuccessStyle.Render(fmt.Sprintf(
		"✅ Connected to %s (%s, %d tokens)",
		a.client.Model(),
		formatDuration(time.Since(start)),
		resp.Usage.InputTokens+resp.Usage.OutputTokens,
	)))
	return 0
}

// newCLIApp wires the app for a one-shot command; on failure it prints the
// configuration help and returns a nil app with the exit code.
func newCLIApp(logger zerolog.Logger) (*app, int) {
	a, err := newApp(logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, tui.ErrorStyle.Render("Error: "+err.Error()))
		if domain.IsType(err, domain.ErrorTypeConfig) {
			fmt.Fprintln(os.Stderr, tui.InfoStyle.Render(claude.GetAPIKeyHelp()))
		}
		return nil, 1
	}
	return a, 0
}

// translateSource runs the text or image path for one source. "-" reads
// text from stdin.
func translateSource(a *app, source string, opts *TranslateOptions) (*clarify.TranslationResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), translateTimeout)
	defer cancel()

	if opts.Text || source == "-" {
		text, err := readText(source)
		if err != nil {
			return nil, err
		}
		return a.pipeline.ProcessText(ctx, text)
	}

	asset, err := document.FromPath(source)
	if err != nil {
		return nil, err
	}
	fmt.Fprintln(os.Stderr, tui.InfoStyle.Render(fmt.Sprintf(
		"Reading %s (%s)...", asset.Name(), document.FormatSize(asset.SizeBytes),
	)))
	return a.pipeline.Process(ctx, asset, opts.Crop)
}

func readText(source string) (string, error) {
	if source == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(b), nil
	}

	b, err := os.ReadFile(source)
	if err != nil {
		if os.IsNotExist(err) {
			return "", domain.ValidationError(fmt.Sprintf("%s does not exist", source), domain.ErrSourceUnavailable)
		}
		return "", fmt.Errorf("failed to read %s: %w", source, err)
	}
	return string(b), nil
}

// emitResult prints or writes the translation according to opts
func emitResult(result *clarify.TranslationResult, source string, opts *TranslateOptions) int {
	if opts.JSON {
		if err := clarify.WriteJSON(os.Stdout, result); err != nil {
			fmt.Fprintln(os.Stderr, tui.ErrorStyle.Render("Error: "+err.Error()))
			return 1
		}
		return 0
	}

	if opts.Output == "" {
		fmt.Println(tui.RenderTranslation(result, renderWidth))
		return 0
	}

	n, err := clarify.WriteMarkdown(opts.Output, result, clarify.ExportOptions{
		Overwrite:      opts.Overwrite,
		AddFrontMatter: opts.FrontMatter,
		Source:         source,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, tui.ErrorStyle.Render("Error: "+err.Error()))
		return 1
	}

	fmt.Println(tui.SuccessStyle.Render(fmt.Sprintf(
		"✅ Saved %s (%s)", opts.Output, document.FormatSize(n),
	)))
	return 0
}

func printFailure(err error) {
	fmt.Fprintln(os.Stderr, tui.ErrorStyle.Render("Error: "+domain.UserMessage(err)))
	if domain.IsTransient(err) {
		fmt.Fprintln(os.Stderr, tui.InfoStyle.Render("This is usually temporary. Please try again in a moment."))
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
}

// printTranslateHelp prints help for the translate and ask commands
func printTranslateHelp(w io.Writer) {
	help := `
🩺 Explain a medical document

USAGE:
    medclarify translate [OPTIONS] <file>
    medclarify ask --question "..." [OPTIONS] <file>

ARGUMENTS:
    <file>                  A JPEG or PNG photo of the document, or a text
                            file with --text ("-" reads text from stdin)

OPTIONS:
    -t, --text              Treat the input as plain document text
    --crop <x,y,w,h>        Crop the image to this rectangle first
    --json                  Print the result as JSON
    -o, --output <file>     Write the result as markdown
    --overwrite             Replace an existing output file
    --frontmatter           Add YAML front matter to the markdown
    -q, --question <text>   Question to ask about the document (ask only)

EXAMPLES:
    medclarify translate ./discharge.jpg
    medclarify translate --crop 0,200,1200,900 -o results.md ./labs.png
    pbpaste | medclarify translate --json -
    medclarify ask -q "What is my next appointment?" ./discharge.jpg
`
	fmt.Fprintln(w, help)
}
