package history

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"shift-checklist/internal/checklist"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestRepo(t *testing.T, shape Shape, c *clock) *Repository {
	t.Helper()
	return NewRepository(Options{
		Path:  filepath.Join(t.TempDir(), DefaultFile),
		Shape: shape,
		Now:   c.now,
	})
}

func snapshotWith(toggles int) checklist.Snapshot {
	cat := checklist.DefaultCatalog()
	cells := checklist.NewCells()
	k := checklist.Key{Section: "作業台", Item: "シャーペン", Machine: "3号機"}
	for i := 0; i < toggles; i++ {
		cells.Toggle(k)
	}
	return checklist.Snapshot{Catalog: cat, Cells: cells.Snapshot(), Comments: map[string]string{}}
}

func day(d, h int) time.Time {
	return time.Date(2026, 10, d, h, 30, 15, 0, time.Local)
}

func TestSubmitWide(t *testing.T) {
	c := &clock{day(17, 8)}
	repo := newTestRepo(t, ShapeWide, c)
	snap := snapshotWith(1)
	snap.Comments["作業台"] = "ゴミ箱あり"

	res, err := repo.Submit(context.Background(), snap)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-17 08:30:15", res.Timestamp)
	assert.Equal(t, 7, res.Added)
	assert.Equal(t, 0, res.Replaced)

	tbl, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, 7, tbl.Len())

	want := append([]string{ColTimestamp, ColSection, ColItem}, checklist.MachineNames(10)...)
	want = append(want, ColComment)
	assert.Equal(t, want, tbl.Columns)

	assert.Equal(t, "シャーペン", tbl.Value(0, ColItem))
	assert.Equal(t, "OK", tbl.Value(0, "3号機"))
	assert.Equal(t, "", tbl.Value(0, "2号機"))
	assert.Equal(t, "", tbl.Value(0, ColComment))
	assert.Equal(t, "不要物", tbl.Value(2, ColItem))
	assert.Equal(t, "ゴミ箱あり", tbl.Value(2, ColComment))
	assert.Equal(t, "", tbl.Value(6, ColComment))
}

func TestSubmitWideThreeTogglesIsEmpty(t *testing.T) {
	repo := newTestRepo(t, ShapeWide, &clock{day(17, 8)})
	_, err := repo.Submit(context.Background(), snapshotWith(3))
	require.NoError(t, err)

	tbl, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "", tbl.Value(0, "3号機"))
}

func TestSubmitLong(t *testing.T) {
	repo := newTestRepo(t, ShapeLong, &clock{day(17, 8)})
	snap := snapshotWith(2)
	snap.OperatorID = "A12"
	snap.Comments["成形機"] = "油漏れ"

	res, err := repo.Submit(context.Background(), snap)
	require.NoError(t, err)
	assert.Equal(t, 70, res.Added)

	tbl, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{ColTimestamp, ColOperator, ColSection, ColItem, ColMachine, ColState, ColComment}, tbl.Columns)
	require.Equal(t, 70, tbl.Len())

	assert.Equal(t, "3号機", tbl.Value(2, ColMachine))
	assert.Equal(t, "NG", tbl.Value(2, ColState))
	assert.Equal(t, "A12", tbl.Value(2, ColOperator))
	assert.Equal(t, "", tbl.Value(2, ColComment))
	assert.Equal(t, "油漏れ", tbl.Value(69, ColComment))
}

func TestSameDaySubmitReplaces(t *testing.T) {
	c := &clock{day(17, 8)}
	repo := newTestRepo(t, ShapeWide, c)
	ctx := context.Background()

	_, err := repo.Submit(ctx, snapshotWith(1))
	require.NoError(t, err)
	c.t = day(17, 17)
	res, err := repo.Submit(ctx, snapshotWith(1))
	require.NoError(t, err)
	assert.Equal(t, 7, res.Replaced)

	tbl, err := repo.List(ctx)
	require.NoError(t, err)
	require.Equal(t, 7, tbl.Len())
	for i := range tbl.Rows {
		assert.Equal(t, "2026-10-17 17:30:15", tbl.Value(i, ColTimestamp))
	}
}

func TestDifferentDaysAccumulate(t *testing.T) {
	c := &clock{day(16, 8)}
	repo := newTestRepo(t, ShapeWide, c)
	ctx := context.Background()

	_, err := repo.Submit(ctx, snapshotWith(1))
	require.NoError(t, err)
	c.t = day(17, 8)
	_, err = repo.Submit(ctx, snapshotWith(2))
	require.NoError(t, err)

	tbl, err := repo.List(ctx)
	require.NoError(t, err)
	require.Equal(t, 14, tbl.Len())
	assert.Equal(t, "OK", tbl.Value(0, "3号機"))
	assert.Equal(t, "NG", tbl.Value(7, "3号機"))
}

func TestUnparsableTimestampsSurvive(t *testing.T) {
	c := &clock{day(17, 8)}
	repo := newTestRepo(t, ShapeWide, c)
	seed := "日時,セクション,項目\n2026-10-17 06:00:00,x,y\nyesterday-ish,x,z\n2026-10-17T01:00:00+09:00,x,w\n"
	require.NoError(t, os.WriteFile(repo.Path(), []byte(seed), 0644))

	res, err := repo.Submit(context.Background(), snapshotWith(0))
	require.NoError(t, err)

	tbl, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "yesterday-ish", tbl.Value(0, ColTimestamp))
	assert.GreaterOrEqual(t, res.Replaced, 1)
	assert.Equal(t, res.Total, tbl.Len())
}

func TestColumnUnionKeepsExistingOrder(t *testing.T) {
	c := &clock{day(17, 8)}
	repo := newTestRepo(t, ShapeLong, c)
	seed := "備考,日時,セクション\nold,2026-10-01 08:00:00,作業台\n"
	require.NoError(t, os.WriteFile(repo.Path(), []byte(seed), 0644))

	_, err := repo.Submit(context.Background(), snapshotWith(1))
	require.NoError(t, err)

	tbl, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"備考", ColTimestamp, ColSection, ColItem, ColMachine, ColState, ColComment}, tbl.Columns)
	assert.Equal(t, "old", tbl.Value(0, "備考"))
	assert.Equal(t, "", tbl.Value(0, ColItem))
	assert.Equal(t, "", tbl.Value(1, "備考"))
}

func TestOperatorRequired(t *testing.T) {
	repo := NewRepository(Options{
		Path:            filepath.Join(t.TempDir(), DefaultFile),
		RequireOperator: true,
	})
	_, err := repo.Submit(context.Background(), snapshotWith(1))
	assert.ErrorIs(t, err, ErrOperatorRequired)

	_, statErr := os.Stat(repo.Path())
	assert.True(t, os.IsNotExist(statErr))
}

func TestReservedMachineNameRejected(t *testing.T) {
	repo := newTestRepo(t, ShapeWide, &clock{day(17, 8)})
	snap := snapshotWith(1)
	snap.Catalog.Machines = []string{ColItem, "2号機"}

	_, err := repo.Submit(context.Background(), snap)
	assert.ErrorIs(t, err, ErrReservedColumn)
	_, err = os.Stat(repo.Path())
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, CheckCatalog(checklist.DefaultCatalog()))
}

func TestConcurrentSubmitsKeepOneBatch(t *testing.T) {
	repo := newTestRepo(t, ShapeWide, &clock{day(17, 8)})

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(toggles int) {
			defer wg.Done()
			_, err := repo.Submit(context.Background(), snapshotWith(toggles))
			errs <- err
		}(i % 3)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	data, err := os.ReadFile(repo.Path())
	require.NoError(t, err)
	tbl, err := decodeCSV(data)
	require.NoError(t, err)
	assert.Equal(t, 7, tbl.Len())
	for i := range tbl.Rows {
		assert.Equal(t, "2026-10-17 08:30:15", tbl.Value(i, ColTimestamp))
	}
}

func TestEmptyAndMalformedFilesReadAsEmpty(t *testing.T) {
	repo := newTestRepo(t, ShapeWide, &clock{day(17, 8)})
	ctx := context.Background()

	tbl, err := repo.List(ctx)
	require.NoError(t, err)
	assert.True(t, tbl.Empty())

	require.NoError(t, os.WriteFile(repo.Path(), nil, 0644))
	tbl, err = repo.List(ctx)
	require.NoError(t, err)
	assert.True(t, tbl.Empty())

	require.NoError(t, os.WriteFile(repo.Path(), []byte("a,\"b\n1,2\n"), 0644))
	tbl, err = repo.List(ctx)
	require.NoError(t, err)
	assert.True(t, tbl.Empty())
}

func TestClearTruncate(t *testing.T) {
	repo := newTestRepo(t, ShapeWide, &clock{day(17, 8)})
	ctx := context.Background()
	_, err := repo.Submit(ctx, snapshotWith(1))
	require.NoError(t, err)

	require.NoError(t, repo.Clear(ctx))

	info, err := os.Stat(repo.Path())
	require.NoError(t, err)
	assert.Zero(t, info.Size())
	tbl, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Zero(t, tbl.Len())
}

func TestClearRemove(t *testing.T) {
	repo := NewRepository(Options{
		Path:      filepath.Join(t.TempDir(), DefaultFile),
		ClearMode: ClearRemove,
		Now:       (&clock{day(17, 8)}).now,
	})
	ctx := context.Background()
	require.NoError(t, repo.Clear(ctx))

	_, err := repo.Submit(ctx, snapshotWith(1))
	require.NoError(t, err)
	require.NoError(t, repo.Clear(ctx))

	_, err = os.Stat(repo.Path())
	assert.True(t, os.IsNotExist(err))
	tbl, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Zero(t, tbl.Len())
}

func TestExportCSVIsVerbatim(t *testing.T) {
	repo := newTestRepo(t, ShapeWide, &clock{day(17, 8)})
	ctx := context.Background()

	data, err := repo.ExportCSV(ctx)
	require.NoError(t, err)
	assert.Empty(t, data)

	_, err = repo.Submit(ctx, snapshotWith(1))
	require.NoError(t, err)
	data, err = repo.ExportCSV(ctx)
	require.NoError(t, err)
	onDisk, err := os.ReadFile(repo.Path())
	require.NoError(t, err)
	assert.Equal(t, onDisk, data)
}

func TestExportXLSX(t *testing.T) {
	repo := newTestRepo(t, ShapeLong, &clock{day(17, 8)})
	ctx := context.Background()
	_, err := repo.Submit(ctx, snapshotWith(1))
	require.NoError(t, err)

	data, err := repo.ExportXLSX(ctx)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, os.WriteFile(path, data, 0644))
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(xlsxSheet)
	require.NoError(t, err)
	require.Len(t, rows, 71)
	assert.Equal(t, ColTimestamp, rows[0][0])
	assert.Equal(t, "OK", rows[3][4])
}

func TestCanceledContext(t *testing.T) {
	repo := newTestRepo(t, ShapeWide, &clock{day(17, 8)})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Submit(ctx, snapshotWith(1))
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, repo.Clear(ctx), context.Canceled)
}

func TestParseShapeAndClearMode(t *testing.T) {
	s, err := ParseShape("long")
	require.NoError(t, err)
	assert.Equal(t, ShapeLong, s)
	_, err = ParseShape("tall")
	assert.ErrorIs(t, err, ErrUnknownShape)

	m, err := ParseClearMode("remove")
	require.NoError(t, err)
	assert.Equal(t, ClearRemove, m)
	_, err = ParseClearMode("shred")
	assert.ErrorIs(t, err, ErrUnknownClearMode)
}
