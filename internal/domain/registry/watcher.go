package registry

import (
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/ernestbuffington/embedkit/internal/infrastructure/logging"
)

// debounceWindow coalesces editor write bursts into one reload.
const debounceWindow = 500 * time.Millisecond

// Watcher hot-reloads the definitions directory: any create, write,
// rename, or remove triggers a debounced reseed.
type Watcher struct {
	seeder  *Seeder
	watcher *fsnotify.Watcher
	log     *logging.Logger
	done    chan struct{}
}

// NewWatcher starts watching the seeder's directory.
func NewWatcher(seeder *Seeder, log *logging.Logger) (*Watcher, error) {
	if log == nil {
		log = logging.NewNop()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(seeder.dir); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		seeder:  seeder,
		watcher: fsw,
		log:     log,
		done:    make(chan struct{}),
	}
	go w.run()

	log.Info("watching definitions directory", zap.String("dir", seeder.dir))
	return w, nil
}

func (w *Watcher) run() {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounceWindow)
				timerC = timer.C
			} else {
				timer.Reset(debounceWindow)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("definitions watcher error", zap.Error(err))

		case <-timerC:
			timer = nil
			timerC = nil
			if err := w.seeder.Reseed(); err != nil {
				w.log.Error("definitions reload failed", zap.Error(err))
			}
		}
	}
}

// Close stops watching. Safe to call once.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
