package muxer

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

// ErrNotFound is returned when no ffmpeg binary is present on the search path.
var ErrNotFound = errors.New("couldn't locate ffmpeg binary in PATH (https://www.ffmpeg.org/download.html)")

// Muxer is the capability the save command needs from the external
// multiplexer at option-validation time.
type Muxer interface {
	// Find returns the absolute path of the multiplexer binary.
	Find() (string, error)
}

// Locator looks up ffmpeg on the system search path. The search path is read
// once; later calls return the first answer.
type Locator struct {
	// Getenv defaults to os.Getenv. IsFile defaults to exec.LookPath on the
	// candidate, so only executable files count.
	Getenv func(string) string
	IsFile func(string) bool
	// GOOS defaults to runtime.GOOS.
	GOOS string

	once sync.Once
	path string
	err  error
}

var _ Muxer = (*Locator)(nil)

// NewLocator returns a Locator bound to the current process environment.
func NewLocator() *Locator {
	return &Locator{}
}

// BinaryName is the expected ffmpeg file name for an OS family.
func BinaryName(goos string) string {
	if goos == "windows" {
		return "ffmpeg.exe"
	}
	return "ffmpeg"
}

// Find returns the first PATH entry containing the ffmpeg binary.
func (l *Locator) Find() (string, error) {
	l.once.Do(func() {
		l.path, l.err = l.search()
	})
	return l.path, l.err
}

func (l *Locator) search() (string, error) {
	getenv := l.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	isFile := l.IsFile
	if isFile == nil {
		isFile = isExecutable
	}
	goos := l.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}

	name := BinaryName(goos)
	for _, dir := range splitSearchPath(getenv("PATH"), goos) {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, name)
		if isFile(candidate) {
			return candidate, nil
		}
	}
	return "", ErrNotFound
}

func splitSearchPath(value, goos string) []string {
	if goos == "windows" {
		return strings.Split(value, ";")
	}
	return strings.Split(value, ":")
}

// isExecutable asks exec.LookPath about one candidate. The path is made
// absolute first so a "." PATH entry is not looked up on the real PATH.
func isExecutable(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	_, err = exec.LookPath(abs)
	return err == nil
}
