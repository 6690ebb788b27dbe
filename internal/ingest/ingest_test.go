// Package ingest - Test import CSV theo lô
package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vamsikrishnavetsa/truestate/internal/api/sale/models"
	"github.com/vamsikrishnavetsa/truestate/internal/common"
)

// recordingInserter lưu lại các lô được ghi
type recordingInserter struct {
	batches [][]models.SaleDocument
	err     error
	// rejected là số document bị từ chối ở mỗi lô khi err != nil
	rejected int
}

func (r *recordingInserter) InsertMany(ctx context.Context, docs []models.SaleDocument) (int, error) {
	cp := make([]models.SaleDocument, len(docs))
	copy(cp, docs)
	r.batches = append(r.batches, cp)
	if r.err != nil {
		return len(docs) - r.rejected, r.err
	}
	return len(docs), nil
}

const sampleCSV = `Transaction ID,Date,Customer ID,Customer Name,Age,Customer Region,Tags,Quantity,Final Amount,Extra
T-1,2023-01-05,C-1,Neha,31,North,eco|organic,2,199.5,x
T-2,05-02-2023,C-2,Ravi,,South,"gift, sale",1,50,y
T-3,2023-03-01,C-3,Anu,abc,East,,1,10,z
`

func TestImport_MapsColumnsAndTypes(t *testing.T) {
	store := &recordingInserter{}
	im := NewImporter(store, Options{})

	res, err := im.Import(context.Background(), strings.NewReader(sampleCSV))
	require.NoError(t, err)
	assert.NotEmpty(t, res.ImportID)
	assert.Equal(t, 3, res.Rows)
	assert.Equal(t, 2, res.Inserted)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, []string{"Extra"}, res.UnknownColumns)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 4, res.Errors[0].Line)

	require.Len(t, store.batches, 1)
	docs := store.batches[0]
	require.Len(t, docs, 2)

	first := docs[0]
	assert.Equal(t, "T-1", first.TransactionID)
	assert.Equal(t, "eco,organic", first.Tags)
	require.NotNil(t, first.Age)
	assert.Equal(t, int64(31), *first.Age)
	require.NotNil(t, first.FinalAmount)
	assert.Equal(t, 199.5, *first.FinalAmount)
	require.NotNil(t, first.Date)
	assert.Equal(t, time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC), first.Date.UTC())

	second := docs[1]
	assert.Nil(t, second.Age)
	assert.Equal(t, "gift,sale", second.Tags)
	require.NotNil(t, second.Date)
	assert.Equal(t, time.Date(2023, 2, 5, 0, 0, 0, 0, time.UTC), second.Date.UTC())
}

func TestImport_Batches(t *testing.T) {
	var b strings.Builder
	b.WriteString("Customer Name,Quantity\n")
	for i := 0; i < 7; i++ {
		b.WriteString("Someone,1\n")
	}

	var progress []Progress
	store := &recordingInserter{}
	im := NewImporter(store, Options{
		BatchSize:  3,
		OnProgress: func(p Progress) { progress = append(progress, p) },
	})

	res, err := im.Import(context.Background(), strings.NewReader(b.String()))
	require.NoError(t, err)
	assert.Equal(t, 7, res.Inserted)
	assert.Equal(t, 3, res.Batches)
	require.Len(t, store.batches, 3)
	assert.Len(t, store.batches[2], 1)

	require.Len(t, progress, 3)
	assert.Equal(t, 3, progress[0].Inserted)
	assert.Equal(t, 7, progress[2].Inserted)
	assert.True(t, strings.HasPrefix(progress[0].BatchID, res.ImportID))
}

func TestImport_LogicalHeaderNames(t *testing.T) {
	store := &recordingInserter{}
	im := NewImporter(store, Options{})

	res, err := im.Import(context.Background(), strings.NewReader("customerName,paymentMethod\nNeha,UPI\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, "UPI", store.batches[0][0].PaymentMethod)
}

func TestImport_RowWithoutCustomerIsSkipped(t *testing.T) {
	store := &recordingInserter{}
	im := NewImporter(store, Options{})

	res, err := im.Import(context.Background(), strings.NewReader("Customer Name,Gender\n,Male\nNeha,Female\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 1, res.Skipped)
}

func TestImport_InvalidHeader(t *testing.T) {
	im := NewImporter(&recordingInserter{}, Options{})

	_, err := im.Import(context.Background(), strings.NewReader("foo,bar\n1,2\n"))
	require.Error(t, err)
	assert.Equal(t, common.StatusBadRequest, common.StatusCodeOf(err))

	_, err = im.Import(context.Background(), strings.NewReader(""))
	require.Error(t, err)
	assert.Equal(t, common.StatusBadRequest, common.StatusCodeOf(err))
}

func TestImport_DuplicateKeysContinue(t *testing.T) {
	store := &recordingInserter{err: common.Wrap(common.ErrMongoDuplicate, errors.New("E11000")), rejected: 1}
	im := NewImporter(store, Options{})

	res, err := im.Import(context.Background(), strings.NewReader("Customer ID\nA\nB\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 1, res.Failed)
}

func TestImport_StorageFailure(t *testing.T) {
	store := &recordingInserter{err: common.Wrap(common.ErrMongoNetwork, errors.New("reset")), rejected: 2}
	im := NewImporter(store, Options{})

	res, err := im.Import(context.Background(), strings.NewReader("Customer ID\nA\nB\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrUploadFailed))
	assert.True(t, errors.Is(err, common.ErrMongoNetwork))
	require.NotNil(t, res)
	assert.Equal(t, 0, res.Inserted)
}

func TestSplitRawTags(t *testing.T) {
	assert.Equal(t, []string{"a", " b", "c "}, splitRawTags("a| b,c "))
	assert.Empty(t, splitRawTags(""))
}
