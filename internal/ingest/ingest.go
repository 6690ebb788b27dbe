// Package ingest nạp file CSV giao dịch vào collection sales theo từng lô.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vamsikrishnavetsa/truestate/internal/api/sale/models"
	"github.com/vamsikrishnavetsa/truestate/internal/common"
	"github.com/vamsikrishnavetsa/truestate/internal/global"
	"github.com/vamsikrishnavetsa/truestate/internal/logger"
)

const (
	DefaultBatchSize = 5000
	maxRowErrors     = 20
)

// Inserter ghi một lô document, trả về số document đã ghi (kể cả khi lỗi một phần)
type Inserter interface {
	InsertMany(ctx context.Context, docs []models.SaleDocument) (int, error)
}

// Progress là trạng thái sau mỗi lô
type Progress struct {
	BatchID  string
	Batches  int
	Rows     int
	Inserted int
	Skipped  int
}

// Options cấu hình Importer
type Options struct {
	BatchSize int
	// Location dùng cho ngày không có múi giờ, nil = UTC
	Location   *time.Location
	OnProgress func(Progress)
}

// RowError mô tả một dòng bị bỏ qua
type RowError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// Result là kết quả một lần import
type Result struct {
	ImportID       string        `json:"importId"`
	Rows           int           `json:"rows"`
	Inserted       int           `json:"inserted"`
	Skipped        int           `json:"skipped"`
	Failed         int           `json:"failed"`
	Batches        int           `json:"batches"`
	UnknownColumns []string      `json:"unknownColumns,omitempty"`
	Errors         []RowError    `json:"errors,omitempty"`
	Duration       time.Duration `json:"-"`
}

// Importer đọc CSV theo luồng và ghi theo lô, không giữ cả file trong bộ nhớ
type Importer struct {
	store    Inserter
	opts     Options
	validate *validator.Validate
}

// NewImporter tạo Importer
func NewImporter(store Inserter, opts Options) *Importer {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	global.InitValidator()
	return &Importer{store: store, opts: opts, validate: global.Validate}
}

// Import đọc toàn bộ CSV từ r. Dòng sai định dạng hoặc không hợp lệ bị bỏ qua và đếm vào Skipped;
// document trùng khóa được đếm vào Failed. Lỗi storage khác dừng import và trả về ErrUploadFailed
// cùng kết quả tới thời điểm đó.
func (im *Importer) Import(ctx context.Context, r io.Reader) (*Result, error) {
	start := time.Now()
	res := &Result{ImportID: uuid.NewString()}
	log := logger.WithModule("ingest").WithField("import_id", res.ImportID)

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, common.NewError(common.ErrCodeValidationFormat, "File CSV rỗng", common.StatusBadRequest, nil)
		}
		return nil, common.NewError(common.ErrCodeValidationFormat, "Không đọc được header CSV", common.StatusBadRequest, err.Error())
	}
	cols, unknown := resolveHeader(header)
	if len(cols) == 0 {
		return nil, common.NewError(common.ErrCodeValidationFormat, "Header CSV không có cột nào khớp", common.StatusBadRequest, header)
	}
	res.UnknownColumns = unknown

	batch := make([]models.SaleDocument, 0, im.opts.BatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		res.Batches++
		inserted, err := im.store.InsertMany(ctx, batch)
		res.Inserted += inserted
		if err != nil {
			if !errors.Is(err, common.ErrMongoDuplicate) {
				return err
			}
			res.Failed += len(batch) - inserted
			log.WithError(err).WithField("batch", res.Batches).Warn("Lô có document trùng khóa")
		}
		batch = batch[:0]
		if im.opts.OnProgress != nil {
			im.opts.OnProgress(Progress{
				BatchID:  fmt.Sprintf("%s-%d", res.ImportID, res.Batches),
				Batches:  res.Batches,
				Rows:     res.Rows,
				Inserted: res.Inserted,
				Skipped:  res.Skipped,
			})
		}
		return nil
	}

	skip := func(line int, reason string) {
		res.Skipped++
		if len(res.Errors) < maxRowErrors {
			res.Errors = append(res.Errors, RowError{Line: line, Reason: reason})
		}
	}

	line := 1
	for {
		if err := ctx.Err(); err != nil {
			return res, common.Wrap(common.ErrUploadFailed, err)
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				res.Rows++
				skip(line, parseErr.Error())
				continue
			}
			return res, common.Wrap(common.ErrUploadFailed, err)
		}
		res.Rows++

		doc, err := toDocument(record, cols, im.opts.Location)
		if err != nil {
			skip(line, err.Error())
			continue
		}
		if err := im.validate.Struct(doc); err != nil {
			skip(line, err.Error())
			continue
		}

		batch = append(batch, doc)
		if len(batch) >= im.opts.BatchSize {
			if err := flush(); err != nil {
				log.WithError(err).Error("Ghi lô thất bại")
				return res, common.Wrap(common.ErrUploadFailed, err)
			}
		}
	}
	if err := flush(); err != nil {
		log.WithError(err).Error("Ghi lô thất bại")
		return res, common.Wrap(common.ErrUploadFailed, err)
	}

	res.Duration = time.Since(start)
	log.WithFields(logrus.Fields{
		"rows":        res.Rows,
		"inserted":    res.Inserted,
		"skipped":     res.Skipped,
		"failed":      res.Failed,
		"batches":     res.Batches,
		"duration_ms": res.Duration.Milliseconds(),
	}).Info("Import CSV hoàn tất")
	return res, nil
}
