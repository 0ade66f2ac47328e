package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const reportPrefix = "availability_"

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// CleanFile is a clean long file belonging to one device.
type CleanFile struct {
	DeviceID string
	Path     string
}

// Discovery lists existing pipeline outputs.
type Discovery struct {
	manager *Manager
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(manager *Manager) *Discovery {
	return &Discovery{manager: manager}
}

// CleanFiles returns the clean files of the given devices for [start, end),
// in device order. Paths are built from the configured IDs, so the device
// tag is never recovered from a file name. Devices without a clean file are
// left out.
func (d *Discovery) CleanFiles(manufacturer string, devices []string, start, end time.Time) ([]CleanFile, error) {
	out := make([]CleanFile, 0, len(devices))
	for _, device := range devices {
		path := d.manager.CleanPath(manufacturer, device, start, end)
		info, err := os.Stat(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", path, err)
		}
		if info.IsDir() {
			continue
		}
		out = append(out, CleanFile{DeviceID: device, Path: path})
	}
	return out, nil
}

// ReportDays returns the days with a JSON availability report, newest first.
func (d *Discovery) ReportDays() ([]string, error) {
	files, err := d.list(d.manager.paths.ReportsDir)
	if err != nil {
		return nil, err
	}

	var days []string
	for _, f := range files {
		if !strings.HasPrefix(f.Name, reportPrefix) || filepath.Ext(f.Name) != ExtJSON {
			continue
		}
		day := strings.TrimSuffix(strings.TrimPrefix(f.Name, reportPrefix), ExtJSON)
		if _, err := time.Parse(dateLayout, day); err != nil {
			continue
		}
		days = append(days, day)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(days)))
	return days, nil
}

// list returns the regular files of dir.
func (d *Discovery) list(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(dir, entry.Name()),
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return files, nil
}
