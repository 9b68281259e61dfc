package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"

	"github.com/ernestbuffington/embedkit/internal/dom"
	"github.com/ernestbuffington/embedkit/internal/domain/embed"
	"github.com/ernestbuffington/embedkit/internal/domain/progress"
	"github.com/ernestbuffington/embedkit/internal/shared/paths"
)

// Snapshot is a saved session: every consumer's identity plus the
// rendered content of its frame, enough to rebuild the surface without
// re-fetching anything.
type Snapshot struct {
	Nonce     string             `json:"nonce"`
	Name      string             `json:"name"`
	SessionID string             `json:"session_id"`
	SavedAt   time.Time          `json:"saved_at"`
	Consumers []SnapshotConsumer `json:"consumers"`
}

// SnapshotConsumer is one consumer's saved state.
type SnapshotConsumer struct {
	Definition string `json:"definition"`
	URL        string `json:"url"`
	Hash       string `json:"hash"`
	HTML       string `json:"html,omitempty"`
	Height     int    `json:"height,omitempty"`
}

// SnapshotInfo describes a snapshot file on disk.
type SnapshotInfo struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	SavedAt time.Time `json:"saved_at"`
	Size    int64     `json:"size"`
}

// Save writes a snapshot of the session to the snapshots directory and
// returns the file path. Consumer state is gathered on the session
// loop, so in-flight installs land either fully in or fully out.
func (m *Manager) Save(s *Session, name string) (string, error) {
	snap := Snapshot{
		Nonce:     uuid.NewString(),
		Name:      name,
		SessionID: s.ID.String(),
		SavedAt:   time.Now(),
	}

	s.Loop.Call(func() {
		for _, c := range s.Consumers.List() {
			sc := SnapshotConsumer{
				Definition: c.Definition,
				URL:        c.URL,
				Hash:       c.Hash,
			}
			if f := c.Frame(); f != nil {
				sc.HTML = dom.NewFragment(f.Document().Body.Children...).Render()
				sc.Height = f.Height()
			}
			snap.Consumers = append(snap.Consumers, sc)
		}
	})

	data, err := sonic.Marshal(&snap)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	if err := paths.Ensure(m.snapshotsDir); err != nil {
		return "", fmt.Errorf("create snapshots dir: %w", err)
	}
	path := filepath.Join(m.snapshotsDir, snapshotFileName(name, snap.Nonce))

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create snapshot file: %w", err)
	}
	defer file.Close()

	enc, err := zstd.NewWriter(file)
	if err != nil {
		return "", fmt.Errorf("zstd writer: %w", err)
	}
	if _, err := enc.Write(data); err != nil {
		enc.Close()
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("flush snapshot: %w", err)
	}

	if m.deps.Metrics != nil {
		m.deps.Metrics.SessionsSaved.Inc()
	}
	m.log.Info("session saved",
		zap.String("session_id", s.ID.String()),
		zap.String("path", path),
		zap.Int("consumers", len(snap.Consumers)))
	return path, nil
}

// Restore opens a snapshot file and rebuilds it as a new session:
// consumers are respawned with their original definitions and URLs,
// and saved content is re-installed so nothing refetches on load.
func (m *Manager) Restore(path string, notifier progress.Notifier, notices embed.Notices) (*Session, error) {
	snap, err := readSnapshot(path)
	if err != nil {
		return nil, err
	}

	s := m.Create(notifier, notices)

	var restoreErr error
	s.Loop.Call(func() {
		for _, sc := range snap.Consumers {
			c, err := s.Consumers.Spawn(sc.Definition, sc.URL)
			if err != nil {
				restoreErr = fmt.Errorf("respawn %s consumer: %w", sc.Definition, err)
				return
			}
			if sc.HTML == "" {
				continue
			}
			frag, err := dom.Parse(sc.HTML)
			if err != nil {
				m.log.Warn("snapshot content unparseable, consumer left empty",
					zap.String("url", sc.URL), zap.Error(err))
				continue
			}
			s.Consumers.Install(c, frag)
		}
	})
	if restoreErr != nil {
		_ = m.Close(s.ID)
		return nil, restoreErr
	}

	if m.deps.Metrics != nil {
		m.deps.Metrics.SessionsRestored.Inc()
	}
	m.log.Info("session restored",
		zap.String("session_id", s.ID.String()),
		zap.String("path", path),
		zap.Int("consumers", len(snap.Consumers)))
	return s, nil
}

// Snapshots lists the snapshot files in the snapshots directory.
func (m *Manager) Snapshots() ([]SnapshotInfo, error) {
	entries, err := os.ReadDir(m.snapshotsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read snapshots dir: %w", err)
	}

	var out []SnapshotInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), paths.SnapshotExt) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		out = append(out, SnapshotInfo{
			Name:    strings.TrimSuffix(entry.Name(), paths.SnapshotExt),
			Path:    filepath.Join(m.snapshotsDir, entry.Name()),
			SavedAt: info.ModTime(),
			Size:    info.Size(),
		})
	}
	return out, nil
}

// FindSnapshot resolves a snapshot by name prefix, returning the most
// recently saved match.
func (m *Manager) FindSnapshot(name string) (string, error) {
	infos, err := m.Snapshots()
	if err != nil {
		return "", err
	}
	var best *SnapshotInfo
	for i := range infos {
		if !strings.HasPrefix(infos[i].Name, sanitizeName(name)) {
			continue
		}
		if best == nil || infos[i].SavedAt.After(best.SavedAt) {
			best = &infos[i]
		}
	}
	if best == nil {
		return "", fmt.Errorf("snapshot %q not found", name)
	}
	return best.Path, nil
}

func readSnapshot(path string) (*Snapshot, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer file.Close()

	dec, err := zstd.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer dec.Close()

	var snap Snapshot
	if err := sonic.ConfigDefault.NewDecoder(dec).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

func snapshotFileName(name, nonce string) string {
	return sanitizeName(name) + "-" + nonce + paths.SnapshotExt
}

// sanitizeName keeps snapshot names filesystem-safe.
func sanitizeName(name string) string {
	if name == "" {
		return "session"
	}
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, name)
	return strings.Trim(mapped, "-")
}
