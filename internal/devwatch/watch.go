// Package devwatch watches /dev for I2C adapter nodes appearing or
// disappearing, exactly as spec.md §4.5's filesystem trigger: a create,
// move-in, or delete event whose name begins with "i2c".
package devwatch

import (
	"encoding/binary"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

const watchMask = unix.IN_CREATE | unix.IN_MOVED_TO | unix.IN_DELETE

// pollIntervalMs is how long each poll(2) call blocks before the read
// loop rechecks the stop channel, matching the teacher's 100ms
// responsiveness window.
const pollIntervalMs = 100

// Trigger is called once per qualifying event, with the raw filename
// that changed.
type Trigger func(name string)

// Watcher owns one inotify fd watching a single directory.
type Watcher struct {
	fd  int
	log *logrus.Entry
}

// New installs an inotify watch on dir for node creation, move-in, and
// deletion.
func New(dir string, log *logrus.Entry) (*Watcher, error) {
	fd, err := unix.InotifyInit1(unix.IN_NONBLOCK | unix.IN_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("devwatch: inotify_init1: %w", err)
	}

	if _, err := unix.InotifyAddWatch(fd, dir, watchMask); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("devwatch: inotify_add_watch on %s: %w", dir, err)
	}

	return &Watcher{fd: fd, log: log}, nil
}

// Run polls the inotify fd until stop is closed, calling trigger for
// every event whose name begins with "i2c". Closes the inotify fd on
// return.
func (w *Watcher) Run(stop <-chan struct{}, trigger Trigger) {
	defer unix.Close(w.fd)

	buffer := make([]byte, 4096)
	for {
		select {
		case <-stop:
			return
		default:
		}

		pollDescriptors := []unix.PollFd{{Fd: int32(w.fd), Events: unix.POLLIN}}
		count, err := unix.Poll(pollDescriptors, pollIntervalMs)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			w.log.WithError(err).Warn("devwatch: poll failed, stopping watcher")
			return
		}
		if count == 0 {
			continue
		}

		n, err := unix.Read(w.fd, buffer)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EINTR {
				continue
			}
			w.log.WithError(err).Warn("devwatch: read failed, stopping watcher")
			return
		}

		for _, name := range i2cEventNames(buffer[:n]) {
			trigger(name)
		}
	}
}

// i2cEventNames extracts every event name beginning with "i2c" from a
// buffer of raw inotify_event records, per inotify(7)'s layout.
func i2cEventNames(buffer []byte) []string {
	var names []string
	offset := 0
	for offset+unix.SizeofInotifyEvent <= len(buffer) {
		nameLength := int(binary.NativeEndian.Uint32(buffer[offset+12 : offset+16]))
		eventSize := unix.SizeofInotifyEvent + nameLength
		if offset+eventSize > len(buffer) {
			break
		}

		if nameLength > 0 {
			nameBytes := buffer[offset+unix.SizeofInotifyEvent : offset+eventSize]
			name := nullTerminatedString(nameBytes)
			if hasI2CPrefix(name) {
				names = append(names, name)
			}
		}

		offset += eventSize
	}
	return names
}

func hasI2CPrefix(name string) bool {
	return len(name) >= 3 && name[0] == 'i' && name[1] == '2' && name[2] == 'c'
}

func nullTerminatedString(data []byte) string {
	for i, b := range data {
		if b == 0 {
			return string(data[:i])
		}
	}
	return string(data)
}
