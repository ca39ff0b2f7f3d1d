package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// DefaultBaseURL is Gemini's OpenAI-compatible endpoint
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

// SetDefaults registers default values for every key
func SetDefaults() {
	viper.SetDefault("api_key", "")
	viper.SetDefault("base_url", DefaultBaseURL)
	viper.SetDefault("model", "gemini-2.5-flash")
	viper.SetDefault("mode", "brainstorm")
	viper.SetDefault("max_input", 1000) // Characters accepted per message
	viper.SetDefault("timeout", 60*time.Second)
	viper.SetDefault("output", "print")
	viper.SetDefault("save_dir", ".")
	viper.SetDefault("theme", "auto")     // dark, light, auto
	viper.SetDefault("wrap", 80)          // Terminal render width
	viper.SetDefault("code_style", "monokai")
	viper.SetDefault("highlight", true)
	viper.SetDefault("color_heading", "36") // Cyan
	viper.SetDefault("color_link", "34")    // Blue
	viper.SetDefault("color_code", "33")    // Yellow
	viper.SetDefault("color_quote", "35")   // Magenta
	viper.SetDefault("color_dim", "90")     // Gray
	viper.SetDefault("listen", "127.0.0.1:8080")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "text")
	viper.SetDefault("log_file", "")
	viper.SetDefault("log_caller", false)
}

// Init initializes configuration with viper
func Init() error {
	SetDefaults()

	viper.SetConfigName("focusflow")
	viper.SetConfigType("yaml")

	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", "focusflow"))
		viper.AddConfigPath(home)
	}
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("FOCUSFLOW")
	viper.AutomaticEnv()

	// A missing file is fine, defaults and env still apply
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return errors.Wrap(err, "reading config")
	}
	return nil
}

// GetAPIKey returns the API key, falling back to GEMINI_API_KEY
func GetAPIKey() string {
	if key := viper.GetString("api_key"); key != "" {
		return key
	}
	return os.Getenv("GEMINI_API_KEY")
}

// GetBaseURL returns the OpenAI-compatible endpoint
func GetBaseURL() string {
	return viper.GetString("base_url")
}

// GetModel returns the model name
func GetModel() string {
	return viper.GetString("model")
}

// GetMode returns the initial response mode
func GetMode() string {
	return viper.GetString("mode")
}

// GetMaxInput returns the per-message character limit
func GetMaxInput() int {
	return viper.GetInt("max_input")
}

// GetTimeout returns the language model request timeout
func GetTimeout() time.Duration {
	return viper.GetDuration("timeout")
}

// GetOutput returns the output mode
func GetOutput() string {
	return viper.GetString("output")
}

// GetSaveDir returns the save directory with tilde expansion
func GetSaveDir() string {
	return expandTilde(viper.GetString("save_dir"))
}

// GetTheme returns dark, light or auto
func GetTheme() string {
	return viper.GetString("theme")
}

// GetWrap returns the terminal render width
func GetWrap() int {
	return viper.GetInt("wrap")
}

// GetCodeStyle returns the chroma style name for code blocks
func GetCodeStyle() string {
	return viper.GetString("code_style")
}

// GetHighlight returns whether code blocks are syntax highlighted
func GetHighlight() bool {
	return viper.GetBool("highlight")
}

// GetColorHeading returns ANSI color code for headings
func GetColorHeading() string {
	return viper.GetString("color_heading")
}

// GetColorLink returns ANSI color code for links
func GetColorLink() string {
	return viper.GetString("color_link")
}

// GetColorCode returns ANSI color code for inline code
func GetColorCode() string {
	return viper.GetString("color_code")
}

// GetColorQuote returns ANSI color code for blockquotes
func GetColorQuote() string {
	return viper.GetString("color_quote")
}

// GetColorDim returns ANSI color code for secondary text
func GetColorDim() string {
	return viper.GetString("color_dim")
}

// GetListen returns the serve address
func GetListen() string {
	return viper.GetString("listen")
}

// SetOutput sets output mode at runtime
func SetOutput(mode string) {
	viper.Set("output", mode)
}

// SetMode sets the response mode at runtime
func SetMode(mode string) {
	viper.Set("mode", mode)
}

// expandTilde expands ~ to the user's home directory
func expandTilde(path string) string {
	if len(path) == 0 {
		return path
	}
	if path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
