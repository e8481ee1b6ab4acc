package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// demoAnchor is the reference instant used when mode is "demo" and no anchor
// was configured. Demo deployments run against a pinned clock so the seeded
// walkthrough stays reproducible.
const demoAnchor = "2025-07-05T12:00:00Z"

// Profile is the configuration to start the main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where schedula stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string
	// Anchor pins the reference "now" to a fixed RFC 3339 instant.
	// Empty means the real clock. Demo mode defaults to a pinned anchor.
	Anchor string
	// SessionTTL is how long idle chat sessions are retained.
	SessionTTL time.Duration
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// AnchorTime returns the configured anchor instant, or zero when the real
// clock should be used.
func (p *Profile) AnchorTime() time.Time {
	if p.Anchor == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, p.Anchor)
	if err != nil {
		return time.Time{}
	}
	return t
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Mode == "demo" && p.Anchor == "" {
		p.Anchor = demoAnchor
	}
	if p.Anchor != "" {
		if _, err := time.Parse(time.RFC3339, p.Anchor); err != nil {
			return errors.Wrapf(err, "invalid anchor instant %q", p.Anchor)
		}
	}

	if p.SessionTTL <= 0 {
		p.SessionTTL = 30 * time.Minute
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "schedula")
			if _, err := os.Stat(p.Data); os.IsNotExist(err) {
				if err := os.MkdirAll(p.Data, 0770); err != nil {
					slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
					return err
				}
			}
		} else {
			p.Data = "/var/opt/schedula"
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", dataDir), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("schedula_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	return nil
}
