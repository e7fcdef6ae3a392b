package ffmpeg

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
)

// environment override for the ffmpeg executable
const PathEnv = "SUBTITOOLS_FFMPEG_PATH"

var (
	ensureOnce sync.Once
	ensureErr  error
	ensurePath string
)

// FFmpegPath returns the ffmpeg executable, resolved once per process.
func FFmpegPath() (string, error) {
	ensureOnce.Do(func() {
		ensurePath, ensureErr = locate(os.Getenv, exec.LookPath)
	})
	return ensurePath, ensureErr
}

// locate checks the override variable, then PATH, then the per-user cache
// directory where a previously installed copy may live.
func locate(
	getenv func(string) string,
	lookPath func(string) (string, error),
) (string, error) {
	if p := getenv(PathEnv); p != "" {
		if !fileExists(p) {
			return "", fmt.Errorf("%s points to missing file %s", PathEnv, p)
		}
		return p, nil
	}

	if found, err := lookPath("ffmpeg"); err == nil {
		return found, nil
	}

	if cacheDir, err := os.UserCacheDir(); err == nil && cacheDir != "" {
		cached := filepath.Join(
			cacheDir,
			"subtitools",
			"ffmpeg",
			runtime.GOOS,
			runtime.GOARCH,
			"ffmpeg"+executableSuffix(),
		)
		if fileExists(cached) {
			return cached, nil
		}
	}

	return "", errors.New("ffmpeg not found: install it or set " + PathEnv)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir() && info.Size() > 0
}

func executableSuffix() string {
	if runtime.GOOS == "windows" {
		return ".exe"
	}
	return ""
}
