package cli

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/text/language"

	"github.com/famomatic/vsd/client"
	"github.com/famomatic/vsd/internal/keys"
	"github.com/famomatic/vsd/internal/muxer"
	"github.com/famomatic/vsd/internal/orchestrator"
	"github.com/famomatic/vsd/internal/selector"
)

// EnvPrefix prefixes every environment override, e.g. VSD_THREADS=8.
const EnvPrefix = "VSD"

// Options holds all command-line options of the save command.
type Options struct {
	// Input
	Input string

	// General
	Help       bool
	Version    bool
	ConfigFile string // --config

	// Download / Filesystem
	BaseURL     string   // -b, --baseurl
	Directory   string   // -d, --directory
	Output      string   // -o, --output
	Quality     string   // -q, --quality
	Keys        []string // -k, --key
	Threads     int      // -t, --threads
	RetryCount  int      // --retry-count
	OneStream   bool     // --one-stream
	Alternative bool     // -a, --alternative
	Skip        bool     // -s, --skip
	Resume      bool     // -r, --resume
	RawPrompts  bool     // --raw-prompts

	PreferAudioLang string // --prefer-audio-lang
	PreferSubsLang  string // --prefer-subs-lang

	// Network
	Headers       []string // --header KEY VALUE, flattened
	UserAgent     string
	ProxyAddress  string
	EnableCookies bool
	Cookie        string
	SetCookies    []string // --set-cookie SET_COOKIE URL, flattened
	CookiesFile   string
	Timeout       time.Duration

	// Verbosity / Debug
	Verbose   bool
	PrintJSON bool

	quality selector.Quality
	keys    []keys.Entry
}

// pairFlags take two values per occurrence.
var pairFlags = map[string]string{
	"header":     "KEY VALUE",
	"set-cookie": "SET_COOKIE URL",
}

// NewFlagSet declares every save flag with its default.
func NewFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("vsd save", pflag.ContinueOnError)
	fs.SortFlags = false
	fs.SetOutput(io.Discard)

	fs.BoolP("help", "h", false, "Print help")
	fs.BoolP("version", "V", false, "Print version")
	fs.String("config", "", "Config file (default ./vsd.{yaml,toml,json} when present)")

	fs.StringP("baseurl", "b", "", "Base url for all segments, usually needed for local manifest files")
	fs.StringP("directory", "d", "", "Directory where the temporary and final files are written")
	fs.StringP("output", "o", "", "Path of the final muxed file; requires ffmpeg in PATH")
	fs.StringP("quality", "q", "highest", "Stream quality: "+strings.Join(selector.ValidTokens, ", ")+" or WIDTHxHEIGHT")
	fs.StringArrayP("key", "k", nil, "Decryption key as KID:KEY, KEY or base64:KEY; repeatable")
	fs.IntP("threads", "t", 5, "Maximum number of parallel segment downloads (1-16)")
	fs.Int("retry-count", 15, "Maximum number of retries per segment")
	fs.Bool("one-stream", false, "Download only one stream from the playlist")
	fs.BoolP("alternative", "a", false, "Download alternative streams (audio, subtitles) instead of the video variant")
	fs.BoolP("skip", "s", false, "Skip downloading and muxing alternative streams")
	fs.BoolP("resume", "r", false, "Resume a previous download into the same temp file")
	fs.Bool("raw-prompts", false, "Use plain numbered prompts instead of the interactive menu")
	fs.String("prefer-audio-lang", "", "Preferred audio language (RFC 5646)")
	fs.String("prefer-subs-lang", "", "Preferred subtitle language (RFC 5646)")

	fs.StringArray("header", nil, "Custom request header as KEY VALUE; repeatable")
	fs.String("user-agent", client.DefaultUserAgent, "User agent sent with every request")
	fs.String("proxy-address", "", "http:// or https:// proxy for every request")
	fs.Bool("enable-cookies", false, "Keep cookies set by responses")
	fs.String("cookie", "", "Cookies sent with every request, as in document.cookie")
	fs.StringArray("set-cookie", nil, "Cookie as SET_COOKIE URL, e.g. \"foo=bar; Domain=example.com\" https://example.com; repeatable")
	fs.String("cookies-file", "", "Netscape formatted cookies file")
	fs.Duration("timeout", 60*time.Second, "Per-request timeout (0 disables)")

	fs.BoolP("verbose", "v", false, "Print debugging information")
	fs.Bool("print-json", false, "Print the resolved task as JSON")
	return fs
}

// Usage writes the command synopsis and flag help to w.
func Usage(w io.Writer) {
	fmt.Fprintf(w, "Usage: vsd save [OPTIONS] <INPUT>\n\n")
	fmt.Fprintln(w, "INPUT is a URL, .m3u8, .m3u, .mpd or .xml file, or a webpage to scrape.")
	fmt.Fprintln(w, "Every option can also be set as VSD_<OPTION> or in a vsd config file.")
	fmt.Fprintln(w, "Repeatable options read from VSD_ variables are comma separated; quote")
	fmt.Fprintln(w, "values that contain commas, e.g. VSD_HEADER='Referer,\"https://a.example/?x=1,2\"'.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprint(w, NewFlagSet().FlagUsages())
}

// Parse reads args (without the program name) into Options. A leading "save"
// word is accepted. Values come from flags, then VSD_ environment variables,
// then the config file, then defaults. Parse does not validate values.
func Parse(args []string) (Options, error) {
	if len(args) > 0 && args[0] == "save" {
		args = args[1:]
	}
	expanded, err := expandPairs(args)
	if err != nil {
		return Options{}, err
	}

	fs := NewFlagSet()
	if err := fs.Parse(expanded); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return Options{Help: true}, nil
		}
		return Options{}, &client.OptionError{Option: "args", Err: err}
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return Options{}, fmt.Errorf("bind flags: %w", err)
	}
	if err := readConfig(v, v.GetString("config")); err != nil {
		return Options{}, err
	}

	opts := Options{
		Help:       v.GetBool("help"),
		Version:    v.GetBool("version"),
		ConfigFile: v.GetString("config"),

		BaseURL:     v.GetString("baseurl"),
		Directory:   v.GetString("directory"),
		Output:      v.GetString("output"),
		Quality:     v.GetString("quality"),
		Threads:     v.GetInt("threads"),
		RetryCount:  v.GetInt("retry-count"),
		OneStream:   v.GetBool("one-stream"),
		Alternative: v.GetBool("alternative"),
		Skip:        v.GetBool("skip"),
		Resume:      v.GetBool("resume"),
		RawPrompts:  v.GetBool("raw-prompts"),

		PreferAudioLang: v.GetString("prefer-audio-lang"),
		PreferSubsLang:  v.GetString("prefer-subs-lang"),

		UserAgent:     v.GetString("user-agent"),
		ProxyAddress:  v.GetString("proxy-address"),
		EnableCookies: v.GetBool("enable-cookies"),
		Cookie:        v.GetString("cookie"),
		CookiesFile:   v.GetString("cookies-file"),
		Timeout:       v.GetDuration("timeout"),

		Verbose:   v.GetBool("verbose"),
		PrintJSON: v.GetBool("print-json"),
	}
	for _, arr := range []struct {
		name string
		dst  *[]string
	}{
		{"key", &opts.Keys},
		{"header", &opts.Headers},
		{"set-cookie", &opts.SetCookies},
	} {
		vals, err := stringArray(fs, v, arr.name)
		if err != nil {
			return Options{}, err
		}
		*arr.dst = vals
	}

	switch rest := fs.Args(); len(rest) {
	case 0:
	case 1:
		opts.Input = rest[0]
	default:
		return opts, &client.OptionError{
			Option: "input",
			Err:    fmt.Errorf("expected one input, got %d: %s", len(rest), strings.Join(rest, " ")),
		}
	}
	return opts, nil
}

// expandPairs rewrites "--header K V" into "--header=K --header=V" so the
// pair lands in one flat string array.
func expandPairs(args []string) ([]string, error) {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			out = append(out, args[i:]...)
			break
		}
		name, ok := strings.CutPrefix(arg, "--")
		if !ok {
			out = append(out, arg)
			continue
		}
		names, isPair := pairFlags[name]
		if !isPair {
			out = append(out, arg)
			continue
		}
		if i+2 >= len(args) {
			return nil, &client.OptionError{Option: name, Err: fmt.Errorf("expects two values: %s", names)}
		}
		out = append(out, "--"+name+"="+args[i+1], "--"+name+"="+args[i+2])
		i += 2
	}
	return out, nil
}

func readConfig(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("vsd")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return &client.OptionError{Option: "config", Value: path, Err: err}
	}
	return nil
}

// stringArray prefers the flag's own values so commas inside a header value
// survive. A single string from the environment or config is read as one CSV
// record, so "User-Agent,\"Mozilla/5.0 (X11)\"" keeps the space in the value;
// config lists are taken as they are.
func stringArray(fs *pflag.FlagSet, v *viper.Viper, name string) ([]string, error) {
	if f := fs.Lookup(name); f != nil && f.Changed {
		return fs.GetStringArray(name)
	}
	raw, ok := v.Get(name).(string)
	if !ok {
		if vals := v.GetStringSlice(name); len(vals) > 0 {
			return vals, nil
		}
		return nil, nil
	}
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	vals, err := csv.NewReader(strings.NewReader(raw)).Read()
	if err != nil {
		return nil, &client.OptionError{Option: name, Value: raw, Err: err}
	}
	return vals, nil
}

// Validate checks every option and parses the quality and key grammars.
// finder is queried only when an output path is set.
func (o *Options) Validate(finder muxer.Muxer) error {
	if err := client.CheckInput(o.Input); err != nil {
		return err
	}
	if o.Threads < 1 || o.Threads > 16 {
		return &client.OptionError{Option: "threads", Value: fmt.Sprint(o.Threads), Err: errors.New("must be in range 1-16")}
	}
	if o.RetryCount < 0 {
		return &client.OptionError{Option: "retry-count", Value: fmt.Sprint(o.RetryCount), Err: errors.New("must not be negative")}
	}
	if o.Timeout < 0 {
		return &client.OptionError{Option: "timeout", Value: o.Timeout.String(), Err: errors.New("must not be negative")}
	}

	q, err := selector.Parse(o.Quality)
	if err != nil {
		return &client.OptionError{Option: "quality", Err: err}
	}
	o.quality = q

	entries, err := keys.ParseAll(o.Keys)
	if err != nil {
		return &client.OptionError{Option: "key", Err: err}
	}
	o.keys = entries

	if len(o.Headers)%2 != 0 {
		return &client.OptionError{Option: "header", Err: errors.New("expects KEY VALUE pairs")}
	}
	if len(o.SetCookies)%2 != 0 {
		return &client.OptionError{Option: "set-cookie", Err: errors.New("expects SET_COOKIE URL pairs")}
	}
	if p := strings.TrimSpace(o.ProxyAddress); p != "" {
		lower := strings.ToLower(p)
		if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
			return &client.OptionError{Option: "proxy-address", Value: p, Err: errors.New("only http:// and https:// proxies are supported")}
		}
	}
	for name, tag := range map[string]string{"prefer-audio-lang": o.PreferAudioLang, "prefer-subs-lang": o.PreferSubsLang} {
		if tag == "" {
			continue
		}
		if _, err := language.Parse(tag); err != nil {
			return &client.OptionError{Option: name, Value: tag, Err: err}
		}
	}

	if o.Output != "" {
		if finder == nil {
			finder = muxer.NewLocator()
		}
		if _, err := finder.Find(); err != nil {
			return &client.OptionError{Option: "output", Value: o.Output, Err: err}
		}
	}
	return nil
}

// ToClientConfig converts Options to client.Config.
func ToClientConfig(opts Options) client.Config {
	return client.Config{
		UserAgent:     opts.UserAgent,
		Headers:       append([]string(nil), opts.Headers...),
		ProxyURL:      strings.TrimSpace(opts.ProxyAddress),
		EnableCookies: opts.EnableCookies,
		Cookie:        opts.Cookie,
		SetCookies:    append([]string(nil), opts.SetCookies...),
		CookiesFile:   opts.CookiesFile,
		Timeout:       opts.Timeout,
	}
}

// ToRequest converts validated Options into an orchestrator request.
// It must be called after Validate.
func ToRequest(opts Options) orchestrator.Request {
	return orchestrator.Request{
		Input:           strings.TrimSpace(opts.Input),
		BaseURL:         opts.BaseURL,
		Directory:       opts.Directory,
		Output:          opts.Output,
		Client:          ToClientConfig(opts),
		Quality:         opts.quality,
		Keys:            opts.keys,
		Threads:         opts.Threads,
		RetryCount:      opts.RetryCount,
		OneStream:       opts.OneStream,
		Alternative:     opts.Alternative,
		Skip:            opts.Skip,
		Resume:          opts.Resume,
		RawPrompts:      opts.RawPrompts,
		PreferAudioLang: opts.PreferAudioLang,
		PreferSubsLang:  opts.PreferSubsLang,
	}
}
