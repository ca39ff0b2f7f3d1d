package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gubarz/focusflow/internal/config"
	"github.com/gubarz/focusflow/internal/llm"
	"github.com/gubarz/focusflow/internal/logging"
	"github.com/gubarz/focusflow/internal/output"
	"github.com/gubarz/focusflow/internal/parser"
	"github.com/gubarz/focusflow/internal/render"
	"github.com/gubarz/focusflow/internal/server"
	"github.com/gubarz/focusflow/internal/ui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "focusflow",
	Short: "Brainstorm, summarize and rewrite with an AI assistant",
	Long: `FocusFlow sends your text to a language model and renders the
markdown reply in the terminal or the browser.

Run without a subcommand to open the chat.`,
	Args:         cobra.NoArgs,
	RunE:         runChat,
	SilenceUsage: true,
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the terminal chat (default)",
	Args:  cobra.NoArgs,
	RunE:  runChat,
}

var askCmd = &cobra.Command{
	Use:   "ask <text...>",
	Short: "Send one message and print the rendered reply",
	Long: `Send one message and print the rendered reply.

Use "-" to read the message from stdin:
  cat notes.txt | focusflow ask --mode summarize -`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

var renderCmd = &cobra.Command{
	Use:   "render [file|-]",
	Short: "Render a markdown file (or stdin) without calling the model",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRender,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the browser chat",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)
	// set here rather than in the literal: initLogging refers to rootCmd
	rootCmd.PersistentPreRunE = initLogging

	rootCmd.AddCommand(chatCmd, askCmd, renderCmd, serveCmd, versionCmd)

	rootCmd.PersistentFlags().String("mode", "", "Mode: brainstorm, summarize, transform")
	rootCmd.PersistentFlags().String("model", "", "Model name")
	rootCmd.PersistentFlags().String("base-url", "", "OpenAI-compatible endpoint")
	rootCmd.PersistentFlags().Int("wrap", 0, "Terminal render width")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text, json")
	rootCmd.PersistentFlags().String("log-file", "", "Also log to this file (rotated)")

	for flag, key := range map[string]string{
		"mode":       "mode",
		"model":      "model",
		"base-url":   "base_url",
		"wrap":       "wrap",
		"log-level":  "log_level",
		"log-format": "log_format",
		"log-file":   "log_file",
	} {
		viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag))
	}

	askCmd.Flags().StringP("output", "o", "", "Output mode: print, copy, save")
	askCmd.Flags().Bool("copy", false, "Copy the reply (shorthand for -o copy)")
	askCmd.Flags().Bool("save", false, "Save the reply (shorthand for -o save)")
	viper.BindPFlag("output", askCmd.Flags().Lookup("output"))

	renderCmd.Flags().StringP("format", "f", "terminal", "Output format: terminal, html")
	renderCmd.Flags().String("engine", "core", "Terminal engine: core, glamour")
	renderCmd.Flags().BoolP("benchmark", "b", false, "Benchmark parse time and exit")

	serveCmd.Flags().StringP("listen", "l", "", "Listen address")
	viper.BindPFlag("listen", serveCmd.Flags().Lookup("listen"))
}

func initConfig() {
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
	}
}

func initLogging(cmd *cobra.Command, args []string) error {
	return logging.Init(logging.Settings{
		Level:      viper.GetString("log_level"),
		Format:     viper.GetString("log_format"),
		File:       viper.GetString("log_file"),
		WithCaller: viper.GetBool("log_caller"),
		// the chat owns the terminal, so it only logs to the file
		Quiet: cmd == rootCmd || cmd == chatCmd,
	})
}

func currentMode() (llm.Mode, error) {
	return llm.ParseMode(config.GetMode())
}

// newGenerator is swapped out in tests
var newGenerator = func() (llm.Generator, error) {
	client, err := llm.NewClient(llm.Settings{
		APIKey:  config.GetAPIKey(),
		BaseURL: config.GetBaseURL(),
		Model:   config.GetModel(),
		Timeout: config.GetTimeout(),
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

func terminalRenderer(tty bool) *render.Terminal {
	t := render.NewTerminal(render.Palette{
		Heading: config.GetColorHeading(),
		Link:    config.GetColorLink(),
		Code:    config.GetColorCode(),
		Quote:   config.GetColorQuote(),
		Dim:     config.GetColorDim(),
	}, config.GetWrap())
	t.CodeStyle = config.GetCodeStyle()
	// chroma writes escapes regardless of the color profile
	t.Highlight = config.GetHighlight() && tty
	return t
}

func runChat(cmd *cobra.Command, args []string) error {
	mode, err := currentMode()
	if err != nil {
		return fmt.Errorf("invalid mode: %w", err)
	}

	gen, err := newGenerator()
	if err != nil {
		return err
	}

	return ui.Run(gen, ui.Options{
		Mode:     mode,
		MaxInput: config.GetMaxInput(),
		SaveDir:  config.GetSaveDir(),
	})
}

// outputFlag resolves the ask output flags: --copy, then --save, then -o.
// It returns "" when none is set.
func outputFlag(flags *pflag.FlagSet) string {
	if c, _ := flags.GetBool("copy"); c {
		return "copy"
	}
	if s, _ := flags.GetBool("save"); s {
		return "save"
	}
	o, _ := flags.GetString("output")
	return o
}

func runAsk(cmd *cobra.Command, args []string) error {
	if o := outputFlag(cmd.Flags()); o != "" {
		config.SetOutput(o)
	}

	mode, err := currentMode()
	if err != nil {
		return fmt.Errorf("invalid mode: %w", err)
	}

	input := strings.Join(args, " ")
	if input == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		input = string(data)
	}
	if err := llm.ValidateInput(input, config.GetMaxInput()); err != nil {
		return err
	}

	gen, err := newGenerator()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reply, err := gen.Generate(ctx, input, mode)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	rendered := reply
	if tty := render.IsTerminal(os.Stdout); tty {
		rendered = terminalRenderer(tty).Render(parser.Parse(reply))
	}

	h := output.NewHandler(output.ParseMode(config.GetOutput()), cmd.OutOrStdout(), config.GetSaveDir())
	return h.Emit(reply, rendered)
}

func runRender(cmd *cobra.Command, args []string) error {
	var (
		raw []byte
		err error
	)
	if len(args) == 0 || args[0] == "-" {
		raw, err = io.ReadAll(cmd.InOrStdin())
	} else {
		raw, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("read error: %w", err)
	}
	text := string(raw)
	out := cmd.OutOrStdout()

	if benchmark, _ := cmd.Flags().GetBool("benchmark"); benchmark {
		start := time.Now()
		blocks := parser.Parse(text)
		elapsed := time.Since(start)

		runtime.GC()
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		fmt.Fprintf(out, "Parsed %d blocks from %s in %v\n", len(blocks), humanize.Bytes(uint64(len(raw))), elapsed)
		fmt.Fprintf(out, "Memory: Alloc=%s, TotalAlloc=%s, Sys=%s, HeapObjects=%d\n",
			humanize.Bytes(m.Alloc), humanize.Bytes(m.TotalAlloc), humanize.Bytes(m.Sys), m.HeapObjects)
		return nil
	}

	format, _ := cmd.Flags().GetString("format")
	engine, _ := cmd.Flags().GetString("engine")

	switch format {
	case "html":
		fmt.Fprint(out, render.HTML(parser.Parse(text), render.HTMLOptions{
			Highlight: config.GetHighlight(),
			CodeStyle: config.GetCodeStyle(),
		}))
		return nil
	case "terminal":
	default:
		return fmt.Errorf("unsupported format: %s (supported: terminal, html)", format)
	}

	switch engine {
	case "glamour":
		fmt.Fprint(out, render.Glamour(text, config.GetWrap()))
	case "core":
		fmt.Fprintln(out, terminalRenderer(render.IsTerminal(os.Stdout)).Render(parser.Parse(text)))
	default:
		return fmt.Errorf("unsupported engine: %s (supported: core, glamour)", engine)
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	gen, err := newGenerator()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := config.GetListen()
	fmt.Printf("Server running at http://%s\n", addr)
	log.Info().Str("model", config.GetModel()).Msg("serving chat")

	s := server.New(server.Options{
		MaxInput:  config.GetMaxInput(),
		Highlight: config.GetHighlight(),
		CodeStyle: config.GetCodeStyle(),
	}, gen)
	return s.Run(ctx, addr)
}

func main() {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
