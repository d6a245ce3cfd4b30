package securefile

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

// EnvFolder maps PYRO_ENV to an optional sub-folder: local/ or develop/.
func EnvFolder() (string, error) {
	raw := strings.TrimSpace(os.Getenv("PYRO_ENV"))
	if raw == "" {
		return "", nil
	}
	switch strings.ToLower(raw) {
	case "local":
		return "local", nil
	case "dev", "develop", "development":
		return "develop", nil
	case "prod", "production":
		return "", nil
	default:
		return "", errors.Newf("invalid PYRO_ENV %q (allowed: local, develop, empty)", raw)
	}
}

// DataDirCandidates returns the directories to try for app state, in priority order:
//  1. SNAP_REAL_HOME/.config/<app>[/<env>]
//  2. HOME/.config/<app>[/<env>]
//  3. os.UserConfigDir()/<app>[/<env>]
func DataDirCandidates(app string) ([]string, error) {
	if app == "" {
		return nil, errors.New("app must not be empty")
	}
	envFolder, err := EnvFolder()
	if err != nil {
		return nil, err
	}

	var dirs []string
	seen := map[string]bool{}
	add := func(d string) {
		if d == "" || seen[d] {
			return
		}
		seen[d] = true
		dirs = append(dirs, d)
	}

	joinHomeStyle := func(homeLike string) string {
		dir := filepath.Join(homeLike, ".config", app)
		if envFolder != "" {
			dir = filepath.Join(dir, envFolder)
		}
		return dir
	}

	if realHome := os.Getenv("SNAP_REAL_HOME"); realHome != "" {
		add(joinHomeStyle(realHome))
	}
	if home := os.Getenv("HOME"); home != "" {
		add(joinHomeStyle(home))
	}
	if dir, err := os.UserConfigDir(); err == nil {
		base := filepath.Join(dir, app)
		if envFolder != "" {
			base = filepath.Join(base, envFolder)
		}
		add(base)
	} else if len(dirs) == 0 {
		return nil, errors.Wrap(err, "UserConfigDir")
	}

	return dirs, nil
}

// DefaultDataDir returns the first candidate from DataDirCandidates.
func DefaultDataDir(app string) (string, error) {
	dirs, err := DataDirCandidates(app)
	if err != nil {
		return "", err
	}
	return dirs[0], nil
}
