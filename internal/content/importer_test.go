package content

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/example/versebot/pkg/models"
)

type fakeChapterStore struct {
	chapters map[int]models.Chapter
	marks    map[int]map[models.MarkKind][]int
}

func newFakeChapterStore() *fakeChapterStore {
	return &fakeChapterStore{
		chapters: make(map[int]models.Chapter),
		marks:    make(map[int]map[models.MarkKind][]int),
	}
}

func (f *fakeChapterStore) Upsert(_ context.Context, c *models.Chapter) error {
	f.chapters[c.Number] = *c
	return nil
}

func (f *fakeChapterStore) ReplaceMarks(_ context.Context, chapter int, kind models.MarkKind, verses []int) error {
	if f.marks[chapter] == nil {
		f.marks[chapter] = make(map[models.MarkKind][]int)
	}
	f.marks[chapter][kind] = verses
	return nil
}

func TestImportFromCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chapters.csv")
	data := "number,name,verses,sections,pages\n" +
		"1,Opening,7,1,1\n" +
		"2,The Heifer,286,\"1,8,21,40\",\"1,50,100,150,200,250\"\n" +
		"3,,200,,\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	store := newFakeChapterStore()
	importer := NewImporter(store)

	result, err := importer.ImportFile(context.Background(), DefaultImportConfig(path))
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalProcessed)
	assert.Equal(t, 3, result.Imported)
	assert.Empty(t, result.Errors)

	assert.Equal(t, models.Chapter{Number: 2, Name: "The Heifer", VerseCount: 286}, store.chapters[2])
	assert.Equal(t, []int{1, 8, 21, 40}, store.marks[2][models.MarkSection])
	assert.Equal(t, []int{1, 50, 100, 150, 200, 250}, store.marks[2][models.MarkPage])

	// Row without marks imports the chapter and stores nothing else.
	assert.Equal(t, 200, store.chapters[3].VerseCount)
	assert.Nil(t, store.marks[3])
}

func TestImportFromCSV_BadRowsReported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chapters.csv")
	data := "number,name,verses,sections,pages\n" +
		"1,Opening,7,,\n" +
		"x,Broken,10,,\n" +
		"4,BadMarks,10,\"5,99\",\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	store := newFakeChapterStore()
	importer := NewImporter(store)

	result, err := importer.ImportFile(context.Background(), DefaultImportConfig(path))
	require.NoError(t, err, "row errors are collected, not fatal")

	assert.Equal(t, 3, result.TotalProcessed)
	assert.Equal(t, 1, result.Imported)
	assert.Len(t, result.Errors, 2)
	assert.Contains(t, store.chapters, 1)
	assert.NotContains(t, store.chapters, 0)
}

func TestImportFromExcel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chapters.xlsx")

	f := excelize.NewFile()
	rows := [][]interface{}{
		{"number", "name", "verses", "sections", "pages"},
		{1, "Opening", 7, "1", "1"},
		{36, "Ya-Sin", 83, "1;13;28;45;68", "1;27;55"},
	}
	for i, row := range rows {
		for j, val := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", cell, val))
		}
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	store := newFakeChapterStore()
	importer := NewImporter(store)

	result, err := importer.ImportFile(context.Background(), DefaultImportConfig(path))
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalProcessed)
	assert.Equal(t, 2, result.Imported)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 83, store.chapters[36].VerseCount)
	assert.Equal(t, []int{1, 13, 28, 45, 68}, store.marks[36][models.MarkSection])
	assert.Equal(t, []int{1, 27, 55}, store.marks[36][models.MarkPage])
}
