package auth

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"withings-mcp/internal/providers"
	"withings-mcp/internal/structures"

	"github.com/joho/godotenv"
)

const (
	AccessTokenKey  = "WITHINGS_ACCESS_TOKEN"
	RefreshTokenKey = "WITHINGS_REFRESH_TOKEN"
)

type Token struct {
	AccessToken  string
	RefreshToken string
	// ExpiresAt is nil for tokens loaded from the environment.
	ExpiresAt *time.Time
}

// TokenStore holds the process-wide credential pair and mirrors it into a
// KEY=VALUE file so that restarts keep the latest rotated tokens.
type TokenStore struct {
	mu    sync.RWMutex
	token Token

	pathOnce sync.Once
	path     string
}

func NewTokenStore(conf *structures.Config) *TokenStore {
	return &TokenStore{
		token: Token{
			AccessToken:  conf.Withings.AccessToken,
			RefreshToken: conf.Withings.RefreshToken,
		},
		path: conf.Withings.EnvFile,
	}
}

func (s *TokenStore) Token() Token {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *TokenStore) Update(t Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = t
}

// Path resolves the token file on first use: the configured path, else the
// nearest .env above the working directory, else .env in the working
// directory.
func (s *TokenStore) Path() string {
	s.pathOnce.Do(func() {
		if s.path != "" {
			return
		}
		if found, ok := providers.FindEnvFile(""); ok {
			s.path = found
			return
		}
		s.path = ".env"
	})
	return s.path
}

// Persist rewrites the token file in full. Lines that do not assign one of
// the two token keys are kept byte for byte; token lines are replaced where
// they stand and appended when absent. The new content is written to a
// sibling temp file and renamed over the original.
func (s *TokenStore) Persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.token
	if t.AccessToken == "" || t.RefreshToken == "" {
		return nil
	}

	path := s.Path()
	mode := os.FileMode(0600)

	var lines []string
	existing, err := os.ReadFile(path)
	switch {
	case err == nil:
		if info, statErr := os.Stat(path); statErr == nil {
			mode = info.Mode().Perm()
		}
		lines = splitLines(existing)
	case !os.IsNotExist(err):
		return err
	}

	values := map[string]string{
		AccessTokenKey:  t.AccessToken,
		RefreshTokenKey: t.RefreshToken,
	}
	written := make(map[string]bool, len(values))

	out := make([]string, 0, len(lines)+len(values))
	for _, line := range lines {
		key, ok := assignedKey(line)
		if !ok {
			out = append(out, line)
			continue
		}
		val, isToken := values[key]
		if !isToken {
			out = append(out, line)
			continue
		}
		if written[key] {
			continue
		}
		out = append(out, key+"="+val)
		written[key] = true
	}
	for _, key := range []string{AccessTokenKey, RefreshTokenKey} {
		if !written[key] {
			out = append(out, key+"="+values[key])
		}
	}

	var buf bytes.Buffer
	for _, line := range out {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}

	return writeAtomic(path, buf.Bytes(), mode)
}

func splitLines(data []byte) []string {
	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines
}

// assignedKey returns the key a single KEY=VALUE line assigns. Comments,
// blank lines and anything godotenv cannot parse assign nothing.
func assignedKey(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return "", false
	}
	parsed, err := godotenv.Unmarshal(trimmed)
	if err != nil || len(parsed) != 1 {
		return "", false
	}
	for key := range parsed {
		return key, true
	}
	return "", false
}

func writeAtomic(path string, data []byte, mode os.FileMode) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
	}

	tmpFile := path + ".tmp"
	file, err := os.OpenFile(tmpFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}

	if _, err = file.Write(data); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, path)
}
