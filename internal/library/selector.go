package library

import (
	"math/rand"
	"os"

	"github.com/sirupsen/logrus"
)

// Selector picks the next "new" image by uniform random choice with
// recent-repeat avoidance. The window fraction and retry budget mirror the
// deployed kiosk's heuristics and stay configurable.
type Selector struct {
	Root string

	// MinWindow is the floor of the repeat-avoidance window:
	// window = max(MinWindow, totalFiles) / 3.
	MinWindow int

	// Retries bounds the re-picks before a recent repeat is accepted anyway.
	Retries int

	// SidecarSuffix, when set, makes edit mode prefer images that do not yet
	// have that sidecar file (so untagged images come up for editing first).
	SidecarSuffix string
}

func NewSelector(root string) *Selector {
	return &Selector{Root: root, MinWindow: 5, Retries: 10}
}

// Candidates lists the eligible files. In edit mode, images lacking the
// configured sidecar are preferred when any exist.
func (s *Selector) Candidates(editMode bool) ([]string, error) {
	files, err := Scan(s.Root)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoImagesFound
	}
	if editMode && s.SidecarSuffix != "" {
		var untagged []string
		for _, f := range files {
			if _, err := os.Stat(f + s.SidecarSuffix); os.IsNotExist(err) {
				untagged = append(untagged, f)
			}
		}
		if len(untagged) > 0 {
			files = untagged
		}
	}
	return files, nil
}

// PickNew returns a random candidate, rejecting picks found in the recent
// history window until the retry budget runs out, at which point the repeat
// is accepted.
func (s *Selector) PickNew(h *History, editMode bool) (string, error) {
	files, err := s.Candidates(editMode)
	if err != nil {
		return "", err
	}

	window := s.MinWindow
	if len(files) > window {
		window = len(files)
	}
	window /= 3

	logrus.Debugf("files count %d, repeat window %d", len(files), window)

	var pick string
	for retries := 0; ; retries++ {
		pick = files[rand.Intn(len(files))]
		if h.Len() == 0 || !h.RecentContains(pick, window) || retries > s.Retries {
			break
		}
	}
	return pick, nil
}
