package settings

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// debounce is how long the settings file must go without writes before it is reloaded.
const debounce = 100 * time.Millisecond

// Watcher reloads a settings file whenever it changes on disk.
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string
	log     *logrus.Logger
	fn      func(Settings)

	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// Watch starts watching the settings file at path. Every time it is written, the file is loaded and
// validated again and fn is called with the result. Files that fail to load are logged and ignored,
// so fn only ever sees valid settings.
func Watch(path string, log *logrus.Logger, fn func(Settings)) (*Watcher, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// The directory is watched rather than the file, as editors often replace a file when saving it.
	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return nil, err
	}

	watcher := &Watcher{
		watcher: w,
		path:    filepath.Clean(path),
		log:     log,
		fn:      fn,
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

// Close stops the watcher. No calls to the reload function are made once Close returns.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.done)

	// pending fires once writes have settled.
	var pending <-chan time.Time
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			pending = time.After(debounce)
		case <-pending:
			pending = nil
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Errorf("settings watcher: %v", err)
		case <-w.closeCh:
			return
		}
	}
}

func (w *Watcher) reload() {
	s, err := Load(w.path)
	if err != nil {
		w.log.WithField("path", w.path).Errorf("unable to reload settings: %v", err)
		return
	}
	w.log.WithField("path", w.path).Info("reloaded settings")
	w.fn(s)
}
