package networkd

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/user"
	"path/filepath"
	"strconv"

	"github.com/pmezard/go-difflib/difflib"
)

// unitFilePrefix orders our units relative to other networkd configuration
const unitFilePrefix = "10-"

// FileName returns the deterministic file name for a unit
func FileName(u Unit) string {
	return unitFilePrefix + u.Name + u.Kind.Ext()
}

// Writer persists rendered units into the network configuration directory
type Writer struct {
	dir   string
	owner string
}

// NewWriter creates a writer from the renderer configuration. An empty
// FileOwner disables ownership assignment.
func NewWriter(cfg Config) *Writer {
	if cfg.NetworkDir == "" {
		cfg.NetworkDir = DefaultNetworkDir
	}
	return &Writer{dir: cfg.NetworkDir, owner: cfg.FileOwner}
}

// Write persists every unit. Writes are independent: a failed unit does not
// prevent the remaining units from being written, and all failures are
// reported together.
func (w *Writer) Write(units []Unit) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", w.dir, err)
	}

	var errs []error
	for _, unit := range units {
		path := filepath.Join(w.dir, FileName(unit))
		log.Printf("Setting networking config for %s", unit.Name)

		if err := os.WriteFile(path, []byte(unit.Contents), 0644); err != nil {
			errs = append(errs, fmt.Errorf("failed to write %s: %w", path, err))
			continue
		}

		if err := chownByName(path, w.owner); err != nil {
			errs = append(errs, fmt.Errorf("failed to set ownership of %s: %w", path, err))
		}
	}

	return errors.Join(errs...)
}

// Diff returns a unified diff between the units currently on disk and the
// freshly rendered ones. Missing files diff against empty content. An empty
// return value means a re-render would change nothing.
func (w *Writer) Diff(units []Unit) (string, error) {
	var out string

	for _, unit := range units {
		path := filepath.Join(w.dir, FileName(unit))

		existing, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to read %s: %w", path, err)
		}

		diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(string(existing)),
			B:        difflib.SplitLines(unit.Contents),
			FromFile: path,
			ToFile:   path,
			Context:  3,
		})
		if err != nil {
			return "", fmt.Errorf("failed to diff %s: %w", path, err)
		}

		out += diff
	}

	return out, nil
}

// chownByName assigns file ownership by user and group name
func chownByName(path, owner string) error {
	if owner == "" {
		return nil
	}

	usr, err := user.Lookup(owner)
	if err != nil {
		return fmt.Errorf("failed to look up user %s: %w", owner, err)
	}
	grp, err := user.LookupGroup(owner)
	if err != nil {
		return fmt.Errorf("failed to look up group %s: %w", owner, err)
	}

	uid, err := strconv.Atoi(usr.Uid)
	if err != nil {
		return fmt.Errorf("invalid uid for %s: %w", owner, err)
	}
	gid, err := strconv.Atoi(grp.Gid)
	if err != nil {
		return fmt.Errorf("invalid gid for %s: %w", owner, err)
	}

	return os.Chown(path, uid, gid)
}
