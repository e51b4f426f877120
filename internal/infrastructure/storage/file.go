package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"keeper-server/internal/domain"
	"keeper-server/pkg/logger"

	"github.com/klauspost/compress/zstd"
	"github.com/sirupsen/logrus"
)

// CompressedExt - файлы с этим расширением пишутся и читаются через zstd.
const CompressedExt = ".zst"

func isCompressed(path string) bool {
	return strings.HasSuffix(path, CompressedExt)
}

// SaveFile сохраняет карту. Пишет во временный файл рядом и переименовывает,
// чтобы оборванная запись не портила прошлое сохранение.
func SaveFile(path string, gm *domain.GameMap) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	if err := writeTo(f, path, gm); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return err
	}

	logger.Log.WithFields(logrus.Fields{
		"component": "storage",
		"path":      path,
		"objects":   len(gm.Objects()),
		"tick":      gm.CurrentTick(),
	}).Info("Level saved")
	return nil
}

func writeTo(f io.Writer, path string, gm *domain.GameMap) error {
	if !isCompressed(path) {
		return WriteLevel(f, gm)
	}

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	if err := WriteLevel(enc, gm); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

// LoadFile читает уровень с диска (.zst - со сжатием).
func LoadFile(path string, opts LoadOptions) (*domain.GameMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if isCompressed(path) {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		r = dec
	}

	gm, err := ReadLevel(r, opts)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	logger.Log.WithFields(logrus.Fields{
		"component": "storage",
		"path":      path,
		"size":      fmt.Sprintf("%dx%d", gm.Width(), gm.Height()),
		"seats":     len(gm.Seats()),
		"rooms":     len(gm.Rooms()),
		"objects":   len(gm.Objects()),
	}).Info("Level loaded")
	return gm, nil
}
