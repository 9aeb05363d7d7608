package orchestrator

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/famomatic/vsd/client"
	"github.com/famomatic/vsd/internal/keys"
	"github.com/famomatic/vsd/internal/prompt"
	"github.com/famomatic/vsd/internal/scrape"
	"github.com/famomatic/vsd/internal/selector"
	"github.com/famomatic/vsd/internal/types"
)

// maxPageSize caps how much of a scraped page is read.
const maxPageSize = 32 << 20

// Request is a validated save invocation.
type Request struct {
	Input     string
	BaseURL   string
	Directory string
	Output    string

	Client client.Config

	Quality selector.Quality
	Keys    []keys.Entry

	Threads     int
	RetryCount  int
	OneStream   bool
	Alternative bool
	Skip        bool
	Resume      bool
	RawPrompts  bool

	PreferAudioLang string
	PreferSubsLang  string
}

// Chooser picks one of several candidate links. *prompt.Prompter satisfies it.
type Chooser interface {
	Select(ctx context.Context, title string, items []string) (int, error)
}

// Assembler turns a Request into a Task. The zero value is ready to use.
type Assembler struct {
	// Logger receives notices. If nil, they are discarded.
	Logger client.Logger

	// Chooser asks the user when a page has several links. If nil, a prompt on
	// stdin/stderr is used, in raw mode when Request.RawPrompts is set.
	Chooser Chooser

	// NewClient builds the HTTP client. If nil, client.NewHTTPClient is used.
	NewClient func(client.Config) (*http.Client, error)

	// Exists reports whether a temp file path is taken. If nil, the
	// filesystem is checked.
	Exists func(string) bool
}

// Assemble classifies the input, builds the HTTP client, resolves website
// inputs to a manifest link and derives the temp file. Any failure aborts
// and no Task is returned.
func (a *Assembler) Assemble(ctx context.Context, req Request) (*types.Task, error) {
	log := client.LoggerOrNop(a.Logger)
	if req.Client.Logger == nil {
		req.Client.Logger = a.Logger
	}

	newClient := a.NewClient
	if newClient == nil {
		newClient = client.NewHTTPClient
	}
	httpClient, err := newClient(req.Client)
	if err != nil {
		return nil, err
	}

	input := strings.TrimSpace(req.Input)
	inputType := types.Classify(input)
	if inputType.IsWebsite() {
		link, err := a.resolveWebsite(ctx, httpClient, input, req.RawPrompts)
		if err != nil {
			return nil, err
		}
		input = link
		inputType = types.Classify(link)
	}
	log.Debugf("input %s classified as %s", input, inputType)

	tempFile := types.TempFilePath(input, req.Directory, req.Resume, a.Exists)

	return &types.Task{
		ID:              uuid.NewString(),
		Input:           input,
		InputType:       inputType,
		BaseURL:         req.BaseURL,
		Directory:       req.Directory,
		Output:          req.Output,
		TempFile:        tempFile,
		Client:          httpClient,
		Quality:         req.Quality,
		Keys:            req.Keys,
		Threads:         req.Threads,
		RetryCount:      req.RetryCount,
		OneStream:       req.OneStream,
		Alternative:     req.Alternative,
		Skip:            req.Skip,
		Resume:          req.Resume,
		RawPrompts:      req.RawPrompts,
		PreferAudioLang: req.PreferAudioLang,
		PreferSubsLang:  req.PreferSubsLang,
	}, nil
}

func (a *Assembler) resolveWebsite(ctx context.Context, httpClient *http.Client, pageURL string, raw bool) (string, error) {
	log := client.LoggerOrNop(a.Logger)
	log.Infof("Scraping website for HLS and DASH stream links.")

	body, err := fetchPage(ctx, httpClient, pageURL)
	if err != nil {
		return "", err
	}
	links := scrape.FindLinks(body)

	chooser := a.Chooser
	if chooser == nil {
		chooser = prompt.Stdio(raw)
	}
	link, err := chooseLink(ctx, chooser, pageURL, links)
	if err != nil {
		return "", err
	}
	if len(links) == 1 {
		log.Infof("Found %s", link)
	} else {
		log.Infof("Selected %s", link)
	}
	return link, nil
}

// chooseLink applies the candidate rule: none is an error, one is taken as
// is, several are offered to chooser until it answers or ctx is done.
func chooseLink(ctx context.Context, chooser Chooser, pageURL string, links []string) (string, error) {
	switch len(links) {
	case 0:
		return "", &client.NoPlaylistError{PageURL: pageURL}
	case 1:
		return links[0], nil
	}
	idx, err := chooser.Select(ctx, "Select one link:", links)
	if err != nil {
		return "", fmt.Errorf("select link: %w", err)
	}
	if idx < 0 || idx >= len(links) {
		return "", fmt.Errorf("select link: index %d out of range", idx)
	}
	return links[idx], nil
}

func fetchPage(ctx context.Context, httpClient *http.Client, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", &client.PageFetchError{URL: pageURL, Err: err}
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return "", &client.PageFetchError{URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &client.PageFetchError{URL: pageURL, StatusCode: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return "", &client.PageFetchError{URL: pageURL, Err: err}
	}
	return string(body), nil
}
