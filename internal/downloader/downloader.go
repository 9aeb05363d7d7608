package downloader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/famomatic/vsd/internal/keys"
	"github.com/famomatic/vsd/internal/types"
)

// Engine consumes a resolved task: it fetches the manifest, downloads and
// decrypts segments, and muxes the result.
type Engine interface {
	Run(ctx context.Context, task *types.Task) error
}

// ReportEngine is an Engine that prints the task it was handed instead of
// downloading it.
type ReportEngine struct {
	Out  io.Writer
	JSON bool
}

var _ Engine = (*ReportEngine)(nil)

// Report is the printable form of a task.
type Report struct {
	ID          string       `json:"id"`
	Input       string       `json:"input"`
	InputType   string       `json:"input_type"`
	BaseURL     string       `json:"base_url,omitempty"`
	Directory   string       `json:"directory,omitempty"`
	Output      string       `json:"output,omitempty"`
	TempFile    string       `json:"temp_file"`
	Quality     string       `json:"quality"`
	Keys        []keys.Entry `json:"keys,omitempty"`
	Threads     int          `json:"threads"`
	RetryCount  int          `json:"retry_count"`
	OneStream   bool         `json:"one_stream"`
	Alternative bool         `json:"alternative"`
	Skip        bool         `json:"skip"`
	Resume      bool         `json:"resume"`
	RawPrompts  bool         `json:"raw_prompts"`

	PreferAudioLang string `json:"prefer_audio_lang,omitempty"`
	PreferSubsLang  string `json:"prefer_subs_lang,omitempty"`
}

// NewReport flattens task into a Report.
func NewReport(task *types.Task) Report {
	return Report{
		ID:              task.ID,
		Input:           task.Input,
		InputType:       task.InputType.String(),
		BaseURL:         task.BaseURL,
		Directory:       task.Directory,
		Output:          task.Output,
		TempFile:        task.TempFile,
		Quality:         task.Quality.String(),
		Keys:            task.Keys,
		Threads:         task.Threads,
		RetryCount:      task.RetryCount,
		OneStream:       task.OneStream,
		Alternative:     task.Alternative,
		Skip:            task.Skip,
		Resume:          task.Resume,
		RawPrompts:      task.RawPrompts,
		PreferAudioLang: task.PreferAudioLang,
		PreferSubsLang:  task.PreferSubsLang,
	}
}

// Run writes the task report to e.Out.
func (e *ReportEngine) Run(ctx context.Context, task *types.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if task == nil {
		return fmt.Errorf("report: nil task")
	}
	report := NewReport(task)
	if e.JSON {
		enc := json.NewEncoder(e.Out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("report: encode json: %w", err)
		}
		return nil
	}
	_, err := io.WriteString(e.Out, formatReport(report))
	return err
}

func formatReport(r Report) string {
	var b strings.Builder
	line := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%-11s %s\n", label+":", value)
		}
	}
	line("Task", r.ID)
	line("Input", r.Input)
	line("Type", r.InputType)
	line("Base URL", r.BaseURL)
	line("Directory", r.Directory)
	line("Temp file", r.TempFile)
	line("Output", r.Output)
	line("Quality", r.Quality)
	for _, k := range r.Keys {
		line("Key", k.String())
	}
	line("Threads", fmt.Sprint(r.Threads))
	line("Retries", fmt.Sprint(r.RetryCount))
	line("Audio lang", r.PreferAudioLang)
	line("Subs lang", r.PreferSubsLang)

	var flags []string
	for _, f := range []struct {
		name string
		on   bool
	}{
		{"one-stream", r.OneStream},
		{"alternative", r.Alternative},
		{"skip", r.Skip},
		{"resume", r.Resume},
		{"raw-prompts", r.RawPrompts},
	} {
		if f.on {
			flags = append(flags, f.name)
		}
	}
	line("Flags", strings.Join(flags, " "))
	return b.String()
}
