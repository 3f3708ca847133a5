package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/epget-cli/epget/color"
	"github.com/epget-cli/epget/constant"
	"github.com/epget-cli/epget/key"
	"github.com/epget-cli/epget/style"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.App + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON customizes JSON output to include current and default values.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.TypeName(),
	})
}

// TypeName returns the string representation of the field's underlying value type.
func (f *Field) TypeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case bool:
		return "bool"
	case time.Duration:
		return "duration"
	case []string:
		return "[]string"
	default:
		return "unknown"
	}
}

// Parse converts raw command line values into the type of the field's default.
func (f *Field) Parse(values []string) (any, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("no value given for %s", f.Key)
	}

	switch f.Value.(type) {
	case string:
		return values[0], nil
	case int:
		parsed, err := strconv.Atoi(values[0])
		if err != nil {
			return nil, fmt.Errorf("invalid integer value: %s", values[0])
		}
		return parsed, nil
	case bool:
		parsed, err := strconv.ParseBool(values[0])
		if err != nil {
			return nil, fmt.Errorf("invalid boolean value: %s", values[0])
		}
		return parsed, nil
	case time.Duration:
		parsed, err := time.ParseDuration(values[0])
		if err != nil {
			return nil, fmt.Errorf("invalid duration value: %s", values[0])
		}
		return parsed, nil
	case []string:
		return values, nil
	default:
		return nil, fmt.Errorf("unsupported type for %s", f.Key)
	}
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		Default[k] = Field{Key: k, Value: v, Description: desc}
		EnvExposed = append(EnvExposed, k)
	}

	register(key.BrowserHeadless, true, "Run the browser without a window")
	register(key.BrowserTrace, false, "Log every browser automation step (very verbose)")
	register(key.CatalogEpisodeSelector, "article.episodiov5", "CSS selector of one episode entry on the season page")
	register(key.CatalogNumberSelector, "a > header > h1 > strong", "CSS selector of the episode number inside an entry")
	register(key.CatalogQualitySelector, "nav > ul > li:nth-child(n+2) a", "CSS selector of the quality label inside an entry")
	register(key.CatalogQualityXPath, "nav/ul/li[position() > 1]", "XPath of the quality group inside an entry.\nThe first option is skipped on purpose")
	register(key.CatalogRedirectXPath, `div/a[@class = "opex-server"]`, "XPath of the redirect link inside the quality group")
	register(key.ResolverTimeout, 30*time.Second, "How long to wait for the download link before the link is considered expired")
	register(key.ResolverPollInterval, time.Second, "Delay between two looks at the redirect page")
	register(key.ResolverDownloadLabel, "Baixar", "Visible text of the final download link")
	register(key.ResolverPushMarkerXPath, `//a[@download and string(@href)]`, "XPath of the element that shows an externally driven download has finished")
	register(key.ResolverPushDoneXPath, `//*[@id = "downloaded"]`, "XPath of the downloaded amount indicator of an externally driven download")
	register(key.ResolverPushTotalXPath, `//*[@id = "total"]`, "XPath of the total size indicator of an externally driven download")
	register(key.ResolverPushPercentXPath, `//*[@id = "percentage"]`, "XPath of the percentage indicator of an externally driven download")
	register(key.TransferChunkSize, constant.ChunkSize, "Read size in bytes of a direct download")
	register(key.TransferLockInterval, time.Second, "Delay between two checks whether an externally written file was released")
	register(key.ProgressRefresh, 100*time.Millisecond, "Minimum delay between two progress redraws")
	register(key.ProgressBar, false, "Draw a progress bar next to the byte counters")
	register(key.DownloadCleanStale, false, "Remove leftover temporary files from the download directory before starting")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, kaomoji, plain, squares, nerd (nerd-font required)")
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
	register(key.CliVersionCheck, true, "Enable automatic version check")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"bold":     style.Bold,
	"purple":   style.Fg(color.Purple),
	"blue":     style.Fg(color.Blue),
	"cyan":     style.Fg(color.Cyan),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))
