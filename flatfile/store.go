// Package flatfile persists record collections to xlsx workbooks, one
// workbook per entity kind. The workbooks are a secondary, best-effort
// mirror of the document store and may be edited out-of-band by operators.
package flatfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/shelterlink/welfare-homes-api/models"
)

// ErrCorrupt marks a workbook that exists but cannot be parsed. A missing
// workbook is not an error: reads lazily create it and return an empty
// collection.
var ErrCorrupt = errors.New("flat file unreadable")

const defaultSheet = "Sheet1"

// Store reads and writes whole collections. Writes replace the collection
// wholesale; there is no locking, the later writer's snapshot wins.
type Store interface {
	Init() error
	ReadHomes() ([]models.Home, error)
	WriteHomes(homes []models.Home) error
	ReadReports() ([]models.Report, error)
	WriteReports(reports []models.Report) error
	ReadAdmins() ([]models.Admin, error)
	WriteAdmins(admins []models.Admin) error
	ReadSocialWorkers() ([]models.SocialWorker, error)
	WriteSocialWorkers(workers []models.SocialWorker) error
}

type fileStore struct {
	dir string
}

// New returns a store rooted at dir. The directory is created on first write.
func New(dir string) Store {
	return &fileStore{dir: dir}
}

// Init creates empty workbooks for every collection that is absent.
func (s *fileStore) Init() error {
	if err := initSheet(s, homesCodec); err != nil {
		return err
	}
	if err := initSheet(s, reportsCodec); err != nil {
		return err
	}
	if err := initSheet(s, adminsCodec); err != nil {
		return err
	}
	return initSheet(s, socialWorkersCodec)
}

func (s *fileStore) ReadHomes() ([]models.Home, error) {
	return readSheet(s, homesCodec)
}

func (s *fileStore) WriteHomes(homes []models.Home) error {
	return writeSheet(s, homesCodec, homes)
}

func (s *fileStore) ReadReports() ([]models.Report, error) {
	return readSheet(s, reportsCodec)
}

func (s *fileStore) WriteReports(reports []models.Report) error {
	return writeSheet(s, reportsCodec, reports)
}

func (s *fileStore) ReadAdmins() ([]models.Admin, error) {
	return readSheet(s, adminsCodec)
}

func (s *fileStore) WriteAdmins(admins []models.Admin) error {
	return writeSheet(s, adminsCodec, admins)
}

func (s *fileStore) ReadSocialWorkers() ([]models.SocialWorker, error) {
	return readSheet(s, socialWorkersCodec)
}

func (s *fileStore) WriteSocialWorkers(workers []models.SocialWorker) error {
	return writeSheet(s, socialWorkersCodec, workers)
}

// sheetCodec maps one entity type onto a workbook's rows.
type sheetCodec[T any] struct {
	file   string
	header []string
	encode func(T) []interface{}
	decode func(row []string) (T, error)
}

func initSheet[T any](s *fileStore, c sheetCodec[T]) error {
	path := filepath.Join(s.dir, c.file)
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return writeSheet(s, c, nil)
}

func readSheet[T any](s *fileStore, c sheetCodec[T]) ([]T, error) {
	path := filepath.Join(s.dir, c.file)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		zap.S().Warnw("flat file missing, creating empty collection", "file", path)
		if err := writeSheet(s, c, nil); err != nil {
			return nil, err
		}
		return nil, nil
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: %s: no sheets", ErrCorrupt, path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}

	var records []T
	for i, row := range rows {
		if i == 0 || len(row) == 0 {
			continue
		}
		rec, err := c.decode(row)
		if err != nil {
			zap.S().Warnw("skipping unreadable row", "file", c.file, "row", i+1, "error", err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func writeSheet[T any](s *fileStore, c sheetCodec[T], records []T) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, len(c.header))
	for i, h := range c.header {
		header[i] = h
	}
	if err := f.SetSheetRow(defaultSheet, "A1", &header); err != nil {
		return err
	}
	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := c.encode(rec)
		if err := f.SetSheetRow(defaultSheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SaveAs(filepath.Join(s.dir, c.file))
}
